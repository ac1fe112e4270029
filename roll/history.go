package roll

import (
	"fmt"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/ring"
)

// History returns the History view of the model, containing methods to
// walk the undo tree.
func (m *Model) History() *HistoryModel { return (*HistoryModel)(m) }

type HistoryModel Model

// Undo returns an Action to undo the last edit.
func (m *HistoryModel) Undo() Action { return MakeAction((*historyUndo)(m)) }

type historyUndo HistoryModel

func (m *historyUndo) Enabled() bool { return m.undo.Current() != NoNode }
func (m *historyUndo) Do() {
	n := m.undo.Current()
	if n == NoNode {
		return
	}
	var revive []uint64
	if !m.undo.Node(n).Kind.IsAdd() {
		revive = (*Model)(m).editIDs(n)
	}
	if err := (*Model)(m).makeRoom(revive, 0); err != nil {
		(*Model)(m).alertError(fmt.Errorf("cannot undo: %w", err))
		return
	}
	m.undo.Undo()
	(*Model)(m).revert(n)
	m.grid.Restore(m.undo.Node(n).Snapshot)
}

// Redo returns an Action to redo the last undone edit, or to switch to the
// next branch when there is nothing left to redo on this one.
func (m *HistoryModel) Redo() Action { return MakeAction((*historyRedo)(m)) }

type historyRedo HistoryModel

func (m *historyRedo) Do() {
	to, from, switched := m.undo.PeekRedo()
	if to == NoNode {
		return
	}
	// from is reverted first; the notes it kills make room for those of to
	var revive []uint64
	freed := 0
	if switched {
		ids := (*Model)(m).editIDs(from)
		if m.undo.Node(from).Kind.IsAdd() {
			freed = (*Model)(m).countAlive(ids)
		} else {
			revive = ids
		}
	}
	if m.undo.Node(to).Kind.IsAdd() {
		revive = append(revive, (*Model)(m).editIDs(to)...)
	}
	if err := (*Model)(m).makeRoom(revive, freed); err != nil {
		(*Model)(m).alertError(fmt.Errorf("cannot redo: %w", err))
		return
	}
	m.undo.Redo()
	if switched {
		(*Model)(m).revert(from)
	}
	(*Model)(m).apply(to)
	m.grid.Restore(m.undo.Node(to).Snapshot)
}

// Alternate returns an Action that makes the next abandoned branch the one
// redo goes to.
func (m *HistoryModel) Alternate() Action { return MakeAction((*historyAlternate)(m)) }

type historyAlternate HistoryModel

func (m *historyAlternate) Do() {
	if !m.undo.Alternate() {
		return
	}
	msg := fmt.Sprintf("redo follows branch %d", m.undo.Node(m.undo.next(m.undo.Current())).Branch)
	(*Model)(m).Alerts().AddNamed("UndoBranch", (*Model)(m).makeHint(msg, " (%s)", "redo"), Info)
}

// apply performs the edit of node n again.
func (m *Model) apply(n NodeIndex) {
	node := m.undo.Node(n)
	p := m.payload(n)
	if node.Kind.IsAdd() {
		m.reviveAll(node.Kind, p)
	} else {
		m.killAll(node.Kind, p)
	}
}

// revert performs the inverse of the edit of node n.
func (m *Model) revert(n NodeIndex) {
	node := m.undo.Node(n)
	p := m.payload(n)
	if node.Kind.IsAdd() {
		m.killAll(node.Kind, p)
	} else {
		m.reviveAll(node.Kind, p)
	}
}

func (m *Model) payload(n NodeIndex) EditPayload {
	p, err := m.undo.Payload(n)
	if err != nil {
		// payloads are written by Record only; a broken one means memory
		// corruption
		panic(err)
	}
	return p
}

// editIDs returns the ids of the notes the edit of node n touched.
func (m *Model) editIDs(n NodeIndex) []uint64 {
	return payloadIDs(m.undo.Node(n).Kind, m.payload(n))
}

func payloadIDs(kind EditKind, p EditPayload) []uint64 {
	if kind == EditAddBatchSame || kind == EditDeleteBatchSame {
		return p.IDs
	}
	ids := make([]uint64, len(p.Quads))
	for i := range p.Quads {
		ids[i] = p.Quads[i].ID
	}
	return ids
}

func (m *Model) countAlive(ids []uint64) int {
	c := 0
	for _, id := range ids {
		if m.notes.IsAlive(id) {
			c++
		}
	}
	return c
}

// makeRoom checks that the notes with the given ids can be brought back
// once freed alive notes have been killed, and compacts the store when the
// dead slots are in the way. It returns ErrStoreFull if they do not fit.
func (m *Model) makeRoom(ids []uint64, freed int) error {
	dead := 0
	missing := 0
	for _, id := range ids {
		if m.notes.IsAlive(id) {
			continue
		}
		dead++
		if _, ok := m.notes.Find(id); !ok {
			missing++
		}
	}
	if alive := m.notes.Alive() - freed + dead; alive > m.notes.Cap() {
		return fmt.Errorf("%w: %d notes would be alive, capacity %d", ErrStoreFull, alive, m.notes.Cap())
	}
	if m.notes.Len()+missing > m.notes.Cap() {
		m.compact()
	}
	return nil
}

func (m *Model) killAll(kind EditKind, p EditPayload) {
	ids := payloadIDs(kind, p)
	for _, id := range ids {
		m.notes.Kill(id)
	}
	cmd := ring.CmdDeleteNotes
	if len(ids) == 1 {
		cmd = ring.CmdDeleteNote
	}
	m.sendIDs(cmd, ids)
}

func (m *Model) reviveAll(kind EditKind, p EditPayload) {
	if kind == EditAddBatchSame || kind == EditDeleteBatchSame {
		q, note := p.Quads[0], p.Notes[0]
		ids := p.IDs
		for i, id := range ids {
			q.ID = id
			if err := m.notes.Revive(q); err != nil {
				m.alertError(err)
				ids = ids[:i]
				break
			}
		}
		note.Alive = true
		m.sendSame(ring.CmdAddNotesSame, note, ids)
		if q.Mute {
			m.sendIDs(ring.CmdMuteNotes, ids)
		}
		return
	}
	notes := make([]vimdaw.Note, 0, len(p.Quads))
	var muted []uint64
	for i, q := range p.Quads {
		if err := m.notes.Revive(q); err != nil {
			m.alertError(err)
			break
		}
		n := p.Notes[i]
		n.Alive = true
		notes = append(notes, n)
		if q.Mute {
			muted = append(muted, q.ID)
		}
	}
	cmd := ring.CmdReviveNotes
	if len(notes) == 1 {
		cmd = ring.CmdReviveNote
	}
	m.sendNotes(cmd, notes...)
	m.sendIDs(ring.CmdMuteNotes, muted)
}
