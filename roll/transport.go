package roll

import (
	"encoding/binary"
	"fmt"

	"github.com/vimdaw/vimdaw/ring"
)

// Transport returns the Transport view of the model, with the actions that
// control the player and export the roll.
func (m *Model) Transport() *TransportModel { return (*TransportModel)(m) }

type (
	TransportModel Model

	transportPlayPause      TransportModel
	transportPlayFromCursor TransportModel
	transportStop           TransportModel
	transportExport         TransportModel
)

// PlayPause returns an Action starting or pausing the playback at the
// current position.
func (m *TransportModel) PlayPause() Action { return MakeAction((*transportPlayPause)(m)) }

func (m *transportPlayPause) Enabled() bool { return m.broker != nil }
func (m *transportPlayPause) Do() {
	if m.broker.Shared.Playing() {
		(*Model)(m).send(ring.CmdPause, nil)
		return
	}
	(*Model)(m).send(ring.CmdPlay, nil)
}

// PlayFromCursor returns an Action starting the playback at the cursor
// column.
func (m *TransportModel) PlayFromCursor() Action { return MakeAction((*transportPlayFromCursor)(m)) }

func (m *transportPlayFromCursor) Enabled() bool { return m.broker != nil }
func (m *transportPlayFromCursor) Do() {
	frames := m.timing.Frames(m.grid.Cursor.X())
	(*Model)(m).send(ring.CmdSeek, binary.LittleEndian.AppendUint64(nil, frames))
	(*Model)(m).send(ring.CmdPlay, nil)
}

// Stop returns an Action stopping the playback and rewinding to the start.
func (m *TransportModel) Stop() Action { return MakeAction((*transportStop)(m)) }

func (m *transportStop) Enabled() bool { return m.broker != nil }
func (m *transportStop) Do()           { (*Model)(m).send(ring.CmdStop, nil) }

// Export returns an Action writing the audible notes to the export file.
func (m *TransportModel) Export() Action { return MakeAction((*transportExport)(m)) }

func (m *transportExport) Enabled() bool { return m.exporter != nil }
func (m *transportExport) Do() {
	notes := (*Model)(m).ExportNotes()
	if err := m.exporter.Export(m.exportPath, notes, m.timing); err != nil {
		(*Model)(m).Alerts().AddNamed("Export", fmt.Sprintf("export failed: %v", err), Error)
		return
	}
	(*Model)(m).Alerts().AddNamed("Export", fmt.Sprintf("%d notes written to %s", len(notes), m.exportPath), Info)
}

// Gain returns the master gain of the player, as last set by the editor.
func (m *TransportModel) Gain() float32 { return m.gain }

// GainUp returns an Action raising the master gain by the configured
// increment, once per count. The gain stays in [0,1].
func (m *TransportModel) GainUp() Action { return MakeAction(transportGain{m, 1}) }

// GainDown returns an Action lowering the master gain.
func (m *TransportModel) GainDown() Action { return MakeAction(transportGain{m, -1}) }

type transportGain struct {
	*TransportModel
	sign float32
}

func (m transportGain) Do() {
	steps := float32(min(m.prefix.Or(1), 1000))
	g := m.gain + m.sign*steps*m.cfg.Audio.GainIncrement
	m.gain = min(max(g, 0), 1)
	if m.broker != nil {
		m.broker.Shared.SetGain(m.gain)
	}
	(*Model)(m.TransportModel).Alerts().AddNamed("Gain", fmt.Sprintf("gain %.2f", m.gain), Info)
}

// GotoPlayBar returns an Action moving the cursor to the column the player
// is at and centring the viewport on it.
func (m *TransportModel) GotoPlayBar() Action { return MakeAction((*transportGotoPlayBar)(m)) }

type transportGotoPlayBar TransportModel

func (m *transportGotoPlayBar) Do() {
	col := m.timing.Columns(m.position)
	if col >= float64(m.cfg.Roll.MaxCol) {
		col = float64(m.cfg.Roll.MaxCol)
	}
	m.grid.GotoAbsolute(Right, uint32(col))
}
