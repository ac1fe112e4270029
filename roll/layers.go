package roll

import (
	"math/bits"
	"strconv"
	"strings"
)

// Layers returns the Layers view of the model. Notes are drawn on the
// lowest active layer; deletes and the bulk operations touch every active
// layer.
func (m *Model) Layers() *LayerModel { return (*LayerModel)(m) }

type (
	LayerModel Model

	layerSelect struct {
		*LayerModel
		layer int
	}

	layerToggle struct {
		*LayerModel
		layer int
	}

	layerAll     LayerModel
	layerMapRow  LayerModel
	layerFromRow LayerModel
	layerFlux    LayerModel
)

// Mask returns the active layer mask.
func (m *LayerModel) Mask() uint64 { return m.layers }

// Count returns the number of active layers.
func (m *LayerModel) Count() int { return bits.OnesCount64(m.layers) }

// Lowest returns the 1-based number of the lowest active layer, the one new
// notes go to.
func (m *LayerModel) Lowest() int { return bits.TrailingZeros64(m.layers) + 1 }

// String lists the active layers, e.g. "1,3"; "all" when every layer is
// active.
func (m *LayerModel) String() string {
	if m.layers == m.allLayers && m.Count() > 1 {
		return "all"
	}
	var b strings.Builder
	for mask := m.layers; mask != 0; mask &= mask - 1 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(bits.TrailingZeros64(mask) + 1))
	}
	if b.Len() == 0 {
		return "-"
	}
	return b.String()
}

func (m *LayerModel) set(mask uint64) {
	m.layers = mask
	if m.broker != nil {
		m.broker.Shared.SetLayers(mask)
	}
}

// Select returns an Action making layer the only active layer.
func (m *LayerModel) Select(layer int) Action {
	return MakeAction(layerSelect{LayerModel: m, layer: layer})
}

func (m layerSelect) Enabled() bool { return m.layer >= 1 && m.layer <= m.cfg.Audio.LayerCount }
func (m layerSelect) Do()           { m.set(1 << (m.layer - 1)) }

// Toggle returns an Action adding or removing layer from the active ones.
// The last active layer cannot be removed.
func (m *LayerModel) Toggle(layer int) Action {
	return MakeAction(layerToggle{LayerModel: m, layer: layer})
}

func (m layerToggle) Enabled() bool { return m.layer >= 1 && m.layer <= m.cfg.Audio.LayerCount }
func (m layerToggle) Do() {
	mask := m.layers ^ 1<<(m.layer-1)
	if mask == 0 {
		return
	}
	m.set(mask)
}

// All returns an Action activating every layer.
func (m *LayerModel) All() Action { return MakeAction((*layerAll)(m)) }

func (m *layerAll) Do() { (*LayerModel)(m).set(m.allLayers) }

// RowMask returns the layers mapped to row, 0 if none.
func (m *LayerModel) RowMask(row uint32) uint64 { return m.rowLayers[row] }

// Flux reports whether the active layers follow the cursor row.
func (m *LayerModel) Flux() bool { return m.flux }

// MapRow returns an Action mapping the active layers to the cursor row.
func (m *LayerModel) MapRow() Action { return MakeAction((*layerMapRow)(m)) }

func (m *layerMapRow) Do() { m.rowLayers[m.grid.Cursor.Row] = m.layers }

// FromRow returns an Action activating the layers mapped to the cursor row.
func (m *LayerModel) FromRow() Action { return MakeAction((*layerFromRow)(m)) }

func (m *layerFromRow) Do() { (*LayerModel)(m).followRow() }

// ToggleFlux returns an Action switching whether the active layers follow
// the cursor row as it moves.
func (m *LayerModel) ToggleFlux() Action { return MakeAction((*layerFlux)(m)) }

func (m *layerFlux) Do() {
	m.flux = !m.flux
	if m.flux {
		(*LayerModel)(m).followRow()
	}
}

// followRow activates the layers mapped to the cursor row. Rows without a
// mapping leave the active layers alone.
func (m *LayerModel) followRow() {
	if mask := m.rowLayers[m.grid.Cursor.Row] & m.allLayers; mask != 0 {
		m.set(mask)
	}
}
