package roll

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"text/template"
	"time"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/arena"
	"github.com/vimdaw/vimdaw/keys"
	"github.com/vimdaw/vimdaw/ring"
)

// Model implements the mutable state of the piano roll editor: the cursor
// and the viewport, the note store, the undo history, the numeric prefix,
// the input state machine, layers and saved views.
//
// It is owned by the GUI goroutine. The audio player runs in its own
// goroutine and learns about note edits only through the frames the model
// writes to Broker.ToPlayer.
type (
	Model struct {
		cfg    vimdaw.Config
		timing vimdaw.Timing

		grid   Grid
		notes  *Notes
		undo   *UndoTree
		prefix Prefix
		mode   keys.Mode
		fsm    *FSM
		hints  map[string]string
		input  inputState

		layers    uint64
		allLayers uint64
		rowLayers map[uint32]uint64
		flux      bool
		gain      float32
		views     []Snapshot
		viewIndex int

		alerts   []Alert
		lastTick time.Time

		broker   *Broker
		outbox   []frame
		position uint64

		midi       MIDIContext
		exporter   Exporter
		exportPath string
		status     *template.Template
		quitted    bool
	}

	// Exporter writes the notes of the roll to a file.
	Exporter interface {
		Export(path string, notes []vimdaw.Note, timing vimdaw.Timing) error
	}

	frame struct {
		cmd     ring.Cmd
		payload []byte
	}
)

// ErrBatchTooLarge is returned when a single edit would touch more notes
// than one undo node may hold.
var ErrBatchTooLarge = errors.New("edit touches too many notes")

const defaultExportPath = "vimdaw.mid"

// NewModel creates a model with an empty roll. bindings are compiled into
// the input state machine; a binding naming an unknown command is an error.
// broker may be nil, in which case nothing is sent to a player.
func NewModel(broker *Broker, cfg vimdaw.Config, bindings []keys.Compiled, midiContext MIDIContext) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		cfg:        cfg,
		timing:     cfg.Timing(),
		grid:       NewGrid(cfg.Roll),
		notes:      NewNotes(cfg.Roll.NoteQuadsMax),
		undo:       NewUndoTree(arena.New(cfg.Roll.ArenaSize, cfg.Roll.PoolAlignment)),
		broker:     broker,
		midi:       midiContext,
		exportPath: defaultExportPath,
		layers:     1,
		allLayers:  ^uint64(0) >> (64 - cfg.Audio.LayerCount),
		rowLayers:  map[uint32]uint64{},
		gain:       cfg.Audio.Gain,
	}
	fsm, err := NewFSM(bindings, m.Command)
	if err != nil {
		return nil, err
	}
	m.fsm = fsm
	m.hints = keys.Hints(bindings)
	if m.status, err = newStatusTemplate(cfg.Status.Format); err != nil {
		return nil, err
	}
	if broker != nil {
		broker.Shared.SetLayers(m.layers)
		broker.Shared.SetGain(m.gain)
	}
	return m, nil
}

// makeHint appends the key sequence bound to command, formatted with
// format, to hint. Without a binding the hint is returned as is.
func (m *Model) makeHint(hint, format, command string) string {
	if seq := m.hints[command]; seq != "" {
		return hint + fmt.Sprintf(format, seq)
	}
	return hint
}

// Config returns the configuration the model was created with.
func (m *Model) Config() vimdaw.Config { return m.cfg }

// Grid returns the cursor and the viewport.
func (m *Model) Grid() *Grid { return &m.grid }

// Notes returns the note store.
func (m *Model) Notes() *Notes { return m.notes }

// UndoTree returns the edit history.
func (m *Model) UndoTree() *UndoTree { return m.undo }

// Prefix returns the pending numeric prefix, 0 if none.
func (m *Model) Prefix() Prefix { return m.prefix }

// Mode returns the current input mode.
func (m *Model) Mode() keys.Mode { return m.mode }

// SetMode switches the input mode and drops any half typed sequence.
func (m *Model) SetMode(mode keys.Mode) {
	m.mode = mode
	m.input.reset()
}

// Position returns the last transport position reported by the player, in
// frames.
func (m *Model) Position() uint64 { return m.position }

// Playing reports whether the player is running.
func (m *Model) Playing() bool {
	return m.broker != nil && m.broker.Shared.Playing()
}

// Quitted reports whether the quit command has run.
func (m *Model) Quitted() bool { return m.quitted }

// SetExporter sets where the export command sends the notes.
func (m *Model) SetExporter(e Exporter, path string) {
	m.exporter = e
	if path != "" {
		m.exportPath = path
	}
}

// Timing returns the column to frame conversion.
func (m *Model) Timing() vimdaw.Timing { return m.timing }

// AudioNote converts a quad to the note the player renders.
func (m *Model) AudioNote(q Quad) vimdaw.Note {
	a := m.cfg.Audio
	return vimdaw.Note{
		StartFrames:    m.timing.Frames(q.X()),
		DurationFrames: m.timing.Frames(q.WidthCols()),
		Pitch:          float32(q.Row),
		Layer:          q.Layer,
		Attack:         a.Attack,
		Sustain:        a.Sustain,
		Release:        a.Release,
		Gain:           q.Gain,
		ID:             q.ID,
		Alive:          q.Alive,
	}
}

// cursorQuad returns the quad drawing at the cursor would insert.
func (m *Model) cursorQuad() Quad {
	c := m.grid.Cursor
	layer := m.drawLayer()
	return Quad{
		Row:      c.Row,
		SubRow:   c.SubRow,
		Col:      c.Col,
		SubCol:   c.SubCol,
		SubCells: c.Nav.Den,
		Width:    c.Width,
		Layer:    layer,
		Color:    uint32(bits.TrailingZeros64(layer)),
		Gain:     1,
		Alive:    true,
	}
}

// drawLayer is the lowest active layer.
func (m *Model) drawLayer() uint64 {
	return m.layers & -m.layers
}

// DrawNote inserts count notes (1 if count is 0) at the cursor.
func (m *Model) DrawNote(count uint32, gain float32) error {
	if count == 0 {
		count = 1
	}
	if int(count) > m.cfg.Roll.UndoBatchMax {
		return fmt.Errorf("%w: %d notes, at most %d", ErrBatchTooLarge, count, m.cfg.Roll.UndoBatchMax)
	}
	if m.notes.Len()+int(count) > m.notes.Cap() {
		m.compact()
	}
	q := m.cursorQuad()
	q.Gain = gain
	slots, err := m.notes.Insert(q, int(count))
	if err != nil {
		return err
	}
	q = m.notes.Quad(slots[0])
	note := m.AudioNote(q)
	if count == 1 {
		m.undo.Record(EditAddOne, EditPayload{Quads: []Quad{q}, Notes: []vimdaw.Note{note}}, m.grid.Snapshot())
		m.sendNotes(ring.CmdAddNote, note)
		return nil
	}
	ids := make([]uint64, len(slots))
	for i, s := range slots {
		ids[i] = m.notes.id[s]
	}
	m.undo.Record(EditAddBatchSame, EditPayload{Quads: []Quad{q}, Notes: []vimdaw.Note{note}, IDs: ids}, m.grid.Snapshot())
	m.sendSame(ring.CmdAddNotesSame, note, ids)
	return nil
}

// DeleteAtCursor deletes the notes under the cursor: the last matching one
// when count is 0, otherwise up to count of them, most recent first.
func (m *Model) DeleteAtCursor(count uint32) error {
	if int(count) > m.cfg.Roll.UndoBatchMax {
		return fmt.Errorf("%w: %d notes, at most %d", ErrBatchTooLarge, count, m.cfg.Roll.UndoBatchMax)
	}
	return m.deleteSlots(m.notes.MatchAtCursor(m.grid.Cursor, m.layers, int(count)))
}

// DeleteSelection deletes the notes of the active layers picked by s.
func (m *Model) DeleteSelection(s Selection) error {
	return m.deleteSlots(m.notes.Select(s, m.grid.Viewport, m.layers))
}

func (m *Model) deleteSlots(slots []int) error {
	if len(slots) == 0 {
		return nil
	}
	if len(slots) > m.cfg.Roll.UndoBatchMax {
		return fmt.Errorf("%w: %d notes, at most %d", ErrBatchTooLarge, len(slots), m.cfg.Roll.UndoBatchMax)
	}
	quads := make([]Quad, len(slots))
	ids := make([]uint64, len(slots))
	for i, s := range slots {
		quads[i] = m.notes.Quad(s)
		ids[i] = quads[i].ID
	}
	for _, id := range ids {
		m.notes.Kill(id)
	}
	snap := m.grid.Snapshot()
	switch {
	case len(quads) == 1:
		m.undo.Record(EditDeleteOne, EditPayload{Quads: quads, Notes: []vimdaw.Note{m.AudioNote(quads[0])}}, snap)
		m.sendIDs(ring.CmdDeleteNote, ids)
	case sameParams(quads):
		tmpl := quads[0]
		m.undo.Record(EditDeleteBatchSame, EditPayload{Quads: []Quad{tmpl}, Notes: []vimdaw.Note{m.AudioNote(tmpl)}, IDs: ids}, snap)
		m.sendIDs(ring.CmdDeleteNotesSame, ids)
	default:
		notes := make([]vimdaw.Note, len(quads))
		for i := range quads {
			notes[i] = m.AudioNote(quads[i])
		}
		m.undo.Record(EditDeleteBatch, EditPayload{Quads: quads, Notes: notes}, snap)
		m.sendIDs(ring.CmdDeleteNotes, ids)
	}
	return nil
}

// sameParams reports whether the quads differ only by their ids.
func sameParams(quads []Quad) bool {
	for i := 1; i < len(quads); i++ {
		a, b := quads[0], quads[i]
		a.ID, b.ID = 0, 0
		if a != b {
			return false
		}
	}
	return true
}

// SetSelectionHidden hides or shows the notes of the active layers picked
// by s.
func (m *Model) SetSelectionHidden(s Selection, hidden bool) int {
	slots := m.notes.Select(s, m.grid.Viewport, m.layers)
	m.notes.SetHidden(slots, hidden)
	return len(slots)
}

// SetSelectionMute mutes or unmutes the notes of the active layers picked
// by s.
func (m *Model) SetSelectionMute(s Selection, mute bool) int {
	slots := m.notes.Select(s, m.grid.Viewport, m.layers)
	m.notes.SetMute(slots, mute)
	ids := make([]uint64, len(slots))
	for i, s := range slots {
		ids[i] = m.notes.id[s]
	}
	cmd := ring.CmdUnmuteNotes
	if mute {
		cmd = ring.CmdMuteNotes
	}
	m.sendIDs(cmd, ids)
	return len(slots)
}

func (m *Model) compact() {
	if m.notes.Compact() > 0 {
		m.send(ring.CmdCompact, nil)
	}
}

// ExportNotes returns the alive, audible notes in store order.
func (m *Model) ExportNotes() []vimdaw.Note {
	var ret []vimdaw.Note
	for _, q := range m.notes.Iterate {
		if q.Mute {
			continue
		}
		ret = append(ret, m.AudioNote(q))
	}
	return ret
}

// send queues a frame for the player. Frames the ring cannot take right now
// wait in the outbox and are retried on the next Tick.
func (m *Model) send(cmd ring.Cmd, payload []byte) {
	if m.broker == nil {
		return
	}
	m.outbox = append(m.outbox, frame{cmd: cmd, payload: payload})
	m.flush()
}

func (m *Model) flush() {
	n := 0
	for _, f := range m.outbox {
		if !m.broker.ToPlayer.Write(f.cmd, f.payload) {
			break
		}
		n++
	}
	m.outbox = append(m.outbox[:0], m.outbox[n:]...)
}

// Pending returns the number of frames waiting for room in the ring.
func (m *Model) Pending() int { return len(m.outbox) }

func (m *Model) maxPayload() int {
	if m.broker == nil {
		return 0
	}
	return m.broker.ToPlayer.Size()/4 - ring.FrameHeaderSize
}

// sendNotes sends note images, splitting them over as many frames as the
// ring needs.
func (m *Model) sendNotes(cmd ring.Cmd, notes ...vimdaw.Note) {
	if m.broker == nil {
		return
	}
	per := max(m.maxPayload()/vimdaw.NoteSize, 1)
	for len(notes) > 0 {
		c := min(per, len(notes))
		var buf []byte
		for i := range notes[:c] {
			buf, _ = notes[i].AppendBinary(buf)
		}
		m.send(cmd, buf)
		notes = notes[c:]
	}
}

func (m *Model) sendIDs(cmd ring.Cmd, ids []uint64) {
	if m.broker == nil {
		return
	}
	per := max(m.maxPayload()/8, 1)
	for len(ids) > 0 {
		c := min(per, len(ids))
		buf := make([]byte, 0, c*8)
		for _, id := range ids[:c] {
			buf = binary.LittleEndian.AppendUint64(buf, id)
		}
		m.send(cmd, buf)
		ids = ids[c:]
	}
}

// sendSame sends a template note and the ids of its copies.
func (m *Model) sendSame(cmd ring.Cmd, note vimdaw.Note, ids []uint64) {
	if m.broker == nil {
		return
	}
	per := max((m.maxPayload()-vimdaw.NoteSize)/8, 1)
	for len(ids) > 0 {
		c := min(per, len(ids))
		buf, _ := note.AppendBinary(nil)
		for _, id := range ids[:c] {
			buf = binary.LittleEndian.AppendUint64(buf, id)
		}
		m.send(cmd, buf)
		ids = ids[c:]
	}
}

// receive drains the frames the player sent back.
func (m *Model) receive() {
	if m.broker == nil {
		return
	}
	var buf []byte
	for {
		cmd, payload, ok := m.broker.ToModel.Read(buf)
		if !ok {
			return
		}
		buf = payload[:0]
		switch cmd {
		case ring.CmdPosition:
			if len(payload) >= 8 {
				m.position = binary.LittleEndian.Uint64(payload)
			}
		}
	}
}

func (m *Model) alertError(err error) {
	switch {
	case errors.Is(err, ErrStoreFull):
		m.Alerts().AddNamed("StoreFull", err.Error(), Error)
	case errors.Is(err, ErrBatchTooLarge):
		m.Alerts().AddNamed("BatchTooLarge", err.Error(), Warning)
	case errors.Is(err, ErrBadFraction):
		m.Alerts().AddNamed("BadFraction", err.Error(), Warning)
	default:
		m.Alerts().Add(err.Error(), Error)
	}
}
