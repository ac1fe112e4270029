package roll

import (
	"errors"
	"fmt"
)

type (
	// Quad is one editable note of the piano roll, as drawn on the screen.
	// The store keeps quads as a structure of arrays; Quad is the row view
	// used to move a single note in and out of the store. All fields have a
	// fixed size so quads can be binary encoded into the undo arena.
	Quad struct {
		ID       uint64
		Row      uint32
		SubRow   uint32
		Col      uint32
		SubCol   uint32
		SubCells uint32 // denominator of SubCol
		Width    Fraction
		Layer    uint64 // exactly one bit
		Color    uint32
		Outline  uint32
		Gain     float32
		Voice    uint32
		Alive    bool
		Hidden   bool
		Mute     bool
	}

	// Notes is the note store: a dense structure of arrays of quads. Deleted
	// quads stay in place, flagged dead, until Compact squeezes them out. IDs
	// increase monotonically and are never reused, slots are.
	Notes struct {
		id       []uint64
		row      []uint32
		subRow   []uint32
		col      []uint32
		subCol   []uint32
		subCells []uint32
		width    []Fraction
		layer    []uint64
		color    []uint32
		outline  []uint32
		gain     []float32
		voice    []uint32
		flags    []quadFlags

		max    int
		nextID uint64
		index  map[uint64]int // id -> slot, for alive and dead quads
	}

	quadFlags uint8

	// Selection picks quads for the bulk operations.
	Selection int
)

const (
	flagAlive quadFlags = 1 << iota
	flagHidden
	flagMute
)

const (
	SelectInView Selection = iota
	SelectOutsideView
	SelectAll
)

// ErrStoreFull is returned when an insert does not fit even after compaction.
var ErrStoreFull = errors.New("note store is full")

// NewNotes creates a store holding at most max quads.
func NewNotes(max int) *Notes {
	return &Notes{max: max, index: map[uint64]int{}}
}

// Len returns the number of occupied slots, alive or dead.
func (n *Notes) Len() int { return len(n.id) }

// Cap returns the maximum number of slots.
func (n *Notes) Cap() int { return n.max }

// Alive returns the number of alive quads.
func (n *Notes) Alive() int {
	c := 0
	for _, f := range n.flags {
		if f&flagAlive != 0 {
			c++
		}
	}
	return c
}

// NextID returns the id the next inserted quad will get.
func (n *Notes) NextID() uint64 { return n.nextID }

// Quad returns the quad in slot i.
func (n *Notes) Quad(i int) Quad {
	f := n.flags[i]
	return Quad{
		ID:       n.id[i],
		Row:      n.row[i],
		SubRow:   n.subRow[i],
		Col:      n.col[i],
		SubCol:   n.subCol[i],
		SubCells: n.subCells[i],
		Width:    n.width[i],
		Layer:    n.layer[i],
		Color:    n.color[i],
		Outline:  n.outline[i],
		Gain:     n.gain[i],
		Voice:    n.voice[i],
		Alive:    f&flagAlive != 0,
		Hidden:   f&flagHidden != 0,
		Mute:     f&flagMute != 0,
	}
}

// Iterate yields the slot and the quad of every alive quad, in slot order.
func (n *Notes) Iterate(yield func(int, Quad) bool) {
	for i := range n.id {
		if n.flags[i]&flagAlive == 0 {
			continue
		}
		if !yield(i, n.Quad(i)) {
			return
		}
	}
}

func (n *Notes) append(q Quad) int {
	var f quadFlags
	if q.Alive {
		f |= flagAlive
	}
	if q.Hidden {
		f |= flagHidden
	}
	if q.Mute {
		f |= flagMute
	}
	n.id = append(n.id, q.ID)
	n.row = append(n.row, q.Row)
	n.subRow = append(n.subRow, q.SubRow)
	n.col = append(n.col, q.Col)
	n.subCol = append(n.subCol, q.SubCol)
	n.subCells = append(n.subCells, q.SubCells)
	n.width = append(n.width, q.Width)
	n.layer = append(n.layer, q.Layer)
	n.color = append(n.color, q.Color)
	n.outline = append(n.outline, q.Outline)
	n.gain = append(n.gain, q.Gain)
	n.voice = append(n.voice, q.Voice)
	n.flags = append(n.flags, f)
	i := len(n.id) - 1
	n.index[q.ID] = i
	return i
}

// reserve makes room for count more slots, compacting if needed.
func (n *Notes) reserve(count int) error {
	if count > n.max {
		return fmt.Errorf("%w: %d notes requested, capacity %d", ErrStoreFull, count, n.max)
	}
	if n.Len()+count > n.max {
		n.Compact()
	}
	if n.Len()+count > n.max {
		return fmt.Errorf("%w: %d notes requested, %d of %d slots alive", ErrStoreFull, count, n.Len(), n.max)
	}
	return nil
}

// Insert appends count copies of q, each with a fresh id, and returns the
// slots they went to. If the store cannot take all of them, even after
// compaction, nothing is inserted and ErrStoreFull is returned.
func (n *Notes) Insert(q Quad, count int) ([]int, error) {
	if count <= 0 {
		return nil, nil
	}
	if err := n.reserve(count); err != nil {
		return nil, err
	}
	q.Alive = true
	slots := make([]int, count)
	for i := range slots {
		q.ID = n.nextID
		n.nextID++
		slots[i] = n.append(q)
	}
	return slots, nil
}

// IsAlive reports whether the quad with the given id is in the store and
// alive.
func (n *Notes) IsAlive(id uint64) bool {
	i, ok := n.index[id]
	return ok && n.flags[i]&flagAlive != 0
}

// Find returns the slot of the quad with the given id.
func (n *Notes) Find(id uint64) (int, bool) {
	i, ok := n.index[id]
	return i, ok
}

// Kill marks the quad with the given id dead. It reports whether the quad
// was alive.
func (n *Notes) Kill(id uint64) bool {
	i, ok := n.index[id]
	if !ok || n.flags[i]&flagAlive == 0 {
		return false
	}
	n.flags[i] &^= flagAlive
	return true
}

// Revive makes the quad q.ID alive again with the fields of q. If compaction
// already reclaimed its slot, q is appended, compacting first if needed.
func (n *Notes) Revive(q Quad) error {
	q.Alive = true
	if i, ok := n.index[q.ID]; ok {
		n.set(i, q)
		return nil
	}
	if err := n.reserve(1); err != nil {
		return err
	}
	n.append(q)
	if q.ID >= n.nextID {
		n.nextID = q.ID + 1
	}
	return nil
}

func (n *Notes) set(i int, q Quad) {
	n.row[i] = q.Row
	n.subRow[i] = q.SubRow
	n.col[i] = q.Col
	n.subCol[i] = q.SubCol
	n.subCells[i] = q.SubCells
	n.width[i] = q.Width
	n.layer[i] = q.Layer
	n.color[i] = q.Color
	n.outline[i] = q.Outline
	n.gain[i] = q.Gain
	n.voice[i] = q.Voice
	var f quadFlags
	if q.Alive {
		f |= flagAlive
	}
	if q.Hidden {
		f |= flagHidden
	}
	if q.Mute {
		f |= flagMute
	}
	n.flags[i] = f
}

// MatchAtCursor returns the slots of the alive, visible quads on the cursor
// row and in one of the layers whose span overlaps the cursor span. With
// count > 0 the slots are scanned from the end and at most count matches
// are returned, most recent first. With count == 0 only the last match is
// returned.
func (n *Notes) MatchAtCursor(c Cursor, layers uint64, count int) []int {
	x := c.X()
	end := x + c.WidthCols()
	match := func(i int) bool {
		if n.flags[i]&(flagAlive|flagHidden) != flagAlive || n.row[i] != c.Row || n.layer[i]&layers == 0 {
			return false
		}
		nx := float64(n.col[i]) + float64(n.subCol[i])/float64(n.subCells[i])
		nEnd := nx + float64(n.width[i].Num)/float64(n.width[i].Den)
		return !(x >= nEnd || end <= nx)
	}
	if count > 0 {
		var ret []int
		for i := len(n.id) - 1; i >= 0 && len(ret) < count; i-- {
			if match(i) {
				ret = append(ret, i)
			}
		}
		return ret
	}
	last := -1
	for i := range n.id {
		if match(i) {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	return []int{last}
}

// Select returns the slots of the alive quads in one of the layers picked by
// the selection. A quad is in view when its row is between the bottom and
// top rows and its span overlaps the visible columns.
func (n *Notes) Select(s Selection, v Viewport, layers uint64) []int {
	var ret []int
	for i := range n.id {
		if n.flags[i]&flagAlive == 0 || n.layer[i]&layers == 0 {
			continue
		}
		if s != SelectAll {
			nx := float64(n.col[i]) + float64(n.subCol[i])/float64(n.subCells[i])
			nEnd := nx + float64(n.width[i].Num)/float64(n.width[i].Den)
			in := n.row[i] >= v.BottomRow && n.row[i] <= v.TopRow &&
				nEnd > float64(v.LeftCol) && nx < float64(v.RightCol)+1
			if in != (s == SelectInView) {
				continue
			}
		}
		ret = append(ret, i)
	}
	return ret
}

// SetHidden sets or clears the hidden flag of the given slots.
func (n *Notes) SetHidden(slots []int, hidden bool) { n.setFlag(slots, flagHidden, hidden) }

// SetMute sets or clears the mute flag of the given slots.
func (n *Notes) SetMute(slots []int, mute bool) { n.setFlag(slots, flagMute, mute) }

func (n *Notes) setFlag(slots []int, f quadFlags, v bool) {
	for _, i := range slots {
		if v {
			n.flags[i] |= f
		} else {
			n.flags[i] &^= f
		}
	}
}

// Compact squeezes the alive quads to the front of the arrays, keeping their
// order, and returns the number of slots reclaimed.
func (n *Notes) Compact() int {
	w := 0
	for r := range n.id {
		if n.flags[r]&flagAlive == 0 {
			delete(n.index, n.id[r])
			continue
		}
		if w != r {
			n.id[w] = n.id[r]
			n.row[w] = n.row[r]
			n.subRow[w] = n.subRow[r]
			n.col[w] = n.col[r]
			n.subCol[w] = n.subCol[r]
			n.subCells[w] = n.subCells[r]
			n.width[w] = n.width[r]
			n.layer[w] = n.layer[r]
			n.color[w] = n.color[r]
			n.outline[w] = n.outline[r]
			n.gain[w] = n.gain[r]
			n.voice[w] = n.voice[r]
			n.flags[w] = n.flags[r]
			n.index[n.id[w]] = w
		}
		w++
	}
	reclaimed := len(n.id) - w
	n.id = n.id[:w]
	n.row = n.row[:w]
	n.subRow = n.subRow[:w]
	n.col = n.col[:w]
	n.subCol = n.subCol[:w]
	n.subCells = n.subCells[:w]
	n.width = n.width[:w]
	n.layer = n.layer[:w]
	n.color = n.color[:w]
	n.outline = n.outline[:w]
	n.gain = n.gain[:w]
	n.voice = n.voice[:w]
	n.flags = n.flags[:w]
	return reclaimed
}

// X returns the start column of the quad including the sub-column offset.
func (q *Quad) X() float64 {
	return float64(q.Col) + float64(q.SubCol)/float64(q.SubCells)
}

// WidthCols returns the length of the quad in columns.
func (q *Quad) WidthCols() float64 {
	return float64(q.Width.Num) / float64(q.Width.Den)
}
