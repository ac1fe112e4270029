package roll

import (
	"encoding/binary"
	"fmt"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/arena"
)

type (
	// NodeIndex addresses a node of the undo tree. NoNode means no node.
	NodeIndex int32

	// EditKind tells what an undo node undoes.
	EditKind uint8

	// UndoNode is one edit in the undo tree. The affected quads and notes are
	// encoded in the arena; Payload is where.
	//
	// Next is the primary continuation, the edit redo goes to. AltNext and
	// AltPrev chain the siblings that were abandoned when a new edit was made
	// after undoing: the newest edit is the parent's Next and the older
	// branches hang off it through AltNext.
	UndoNode struct {
		ID       uint64
		Seq      uint64
		Kind     EditKind
		Payload  arena.Span
		Snapshot Snapshot
		Branch   uint32
		Parent   NodeIndex
		Next     NodeIndex
		Prev     NodeIndex
		AltNext  NodeIndex
		AltPrev  NodeIndex
	}

	// UndoTree is a branching edit history. Nodes live in a slice and refer
	// to each other by index; they are never freed individually.
	UndoTree struct {
		nodes      []UndoNode
		root       NodeIndex // first node ever recorded
		first      NodeIndex // primary continuation of the empty history
		current    NodeIndex // last applied edit; NoNode before the first
		nextID     uint64
		nextSeq    uint64
		nextBranch uint32
		arena      *arena.Arena
	}

	// EditPayload is the decoded payload of an undo node. Single edits carry
	// one quad and one note. Batches carry one of each per affected quad.
	// Batches of identical quads carry a single template quad and note and
	// the ids of all the affected quads.
	EditPayload struct {
		Quads []Quad
		Notes []vimdaw.Note
		IDs   []uint64
	}
)

const NoNode NodeIndex = -1

const (
	EditAddOne EditKind = iota
	EditDeleteOne
	EditAddBatch
	EditDeleteBatch
	EditAddBatchSame
	EditDeleteBatchSame
)

func (k EditKind) String() string {
	switch k {
	case EditAddOne:
		return "add"
	case EditDeleteOne:
		return "delete"
	case EditAddBatch:
		return "add batch"
	case EditDeleteBatch:
		return "delete batch"
	case EditAddBatchSame:
		return "add batch of same"
	case EditDeleteBatchSame:
		return "delete batch of same"
	}
	return fmt.Sprintf("EditKind(%d)", uint8(k))
}

// IsAdd reports whether the edit created quads.
func (k EditKind) IsAdd() bool {
	return k == EditAddOne || k == EditAddBatch || k == EditAddBatchSame
}

// NewUndoTree creates an empty history storing payloads in a.
func NewUndoTree(a *arena.Arena) *UndoTree {
	return &UndoTree{root: NoNode, first: NoNode, current: NoNode, arena: a}
}

// Len returns the number of recorded nodes.
func (t *UndoTree) Len() int { return len(t.nodes) }

// Root returns the first node ever recorded.
func (t *UndoTree) Root() NodeIndex { return t.root }

// Current returns the last applied edit, or NoNode.
func (t *UndoTree) Current() NodeIndex { return t.current }

// Node returns the node at index i.
func (t *UndoTree) Node(i NodeIndex) *UndoNode { return &t.nodes[i] }

// Arena returns the arena holding the payloads.
func (t *UndoTree) Arena() *arena.Arena { return t.arena }

// next returns the primary continuation of i, treating NoNode as the empty
// history before the root.
func (t *UndoTree) next(i NodeIndex) NodeIndex {
	if i == NoNode {
		return t.first
	}
	return t.nodes[i].Next
}

func (t *UndoTree) setNext(i, n NodeIndex) {
	if i == NoNode {
		t.first = n
		return
	}
	t.nodes[i].Next = n
}

// Record adds an edit after the current node and makes it current. If the
// current node already had a continuation, that branch is kept as the
// alternative of the new node and the new node starts a new branch. Record
// panics if the arena cannot hold the payload.
func (t *UndoTree) Record(kind EditKind, p EditPayload, s Snapshot) NodeIndex {
	buf, err := p.appendBinary(nil)
	if err != nil {
		panic(fmt.Errorf("could not encode undo payload: %w", err))
	}
	idx := NodeIndex(len(t.nodes))
	n := UndoNode{
		ID:       t.nextID,
		Seq:      t.nextSeq,
		Kind:     kind,
		Payload:  t.arena.Copy(buf),
		Snapshot: s,
		Parent:   t.current,
		Prev:     t.current,
		Next:     NoNode,
		AltNext:  NoNode,
		AltPrev:  NoNode,
	}
	t.nextID++
	t.nextSeq++
	if t.current != NoNode {
		n.Branch = t.nodes[t.current].Branch
	}
	if old := t.next(t.current); old != NoNode {
		t.nextBranch++
		n.Branch = t.nextBranch
		n.AltNext = old
		t.nodes = append(t.nodes, n)
		t.nodes[old].AltPrev = idx
	} else {
		t.nodes = append(t.nodes, n)
	}
	t.setNext(t.current, idx)
	if t.root == NoNode {
		t.root = idx
	}
	t.current = idx
	return idx
}

// Payload decodes the payload of node i.
func (t *UndoTree) Payload(i NodeIndex) (EditPayload, error) {
	return decodeEditPayload(t.arena.Bytes(t.nodes[i].Payload))
}

// Undo steps back over the current node and returns it, or NoNode if the
// history is already at its start. The caller applies the inverse effect.
func (t *UndoTree) Undo() NodeIndex {
	if t.current == NoNode {
		return NoNode
	}
	n := t.current
	t.current = t.nodes[n].Prev
	return n
}

// Redo moves forward and returns the node to apply. It prefers the primary
// continuation of the current node. Without one, it switches to the next
// alternative branch of the current node: in that case switched is true
// and the caller must first revert the current node, whose index is
// returned as from.
func (t *UndoTree) Redo() (to, from NodeIndex, switched bool) {
	to, from, switched = t.PeekRedo()
	if to == NoNode {
		return
	}
	if switched {
		// the sibling becomes the primary continuation of the shared parent
		t.promote(t.nodes[from].Parent, to)
	}
	t.current = to
	return
}

// PeekRedo returns what Redo would return, without moving.
func (t *UndoTree) PeekRedo() (to, from NodeIndex, switched bool) {
	if n := t.next(t.current); n != NoNode {
		return n, NoNode, false
	}
	if t.current == NoNode {
		return NoNode, NoNode, false
	}
	alt := t.nodes[t.current].AltNext
	if alt == NoNode {
		return NoNode, NoNode, false
	}
	return alt, t.current, true
}

// Alternate makes the next abandoned branch after the current node the one
// redo goes to. It reports whether there was one.
func (t *UndoTree) Alternate() bool {
	n := t.next(t.current)
	if n == NoNode || t.nodes[n].AltNext == NoNode {
		return false
	}
	t.promote(t.current, t.nodes[n].AltNext)
	return true
}

// promote moves sibling s to the head of the sibling chain under parent,
// the old head becoming its AltNext.
func (t *UndoTree) promote(parent, s NodeIndex) {
	head := t.next(parent)
	if head == s {
		return
	}
	// unlink s
	if p := t.nodes[s].AltPrev; p != NoNode {
		t.nodes[p].AltNext = t.nodes[s].AltNext
	}
	if nx := t.nodes[s].AltNext; nx != NoNode {
		t.nodes[nx].AltPrev = t.nodes[s].AltPrev
	}
	// push in front of head
	t.nodes[s].AltPrev = NoNode
	t.nodes[s].AltNext = head
	t.nodes[head].AltPrev = s
	t.setNext(parent, s)
}

// Siblings returns the number of branches continuing from the current node.
func (t *UndoTree) Siblings() int {
	c := 0
	for n := t.next(t.current); n != NoNode; n = t.nodes[n].AltNext {
		c++
	}
	return c
}

func (p *EditPayload) appendBinary(buf []byte) ([]byte, error) {
	var err error
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Quads)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Notes)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.IDs)))
	if buf, err = binary.Append(buf, binary.LittleEndian, p.Quads); err != nil {
		return nil, err
	}
	for i := range p.Notes {
		if buf, err = p.Notes[i].AppendBinary(buf); err != nil {
			return nil, err
		}
	}
	return binary.Append(buf, binary.LittleEndian, p.IDs)
}

func decodeEditPayload(buf []byte) (EditPayload, error) {
	var p EditPayload
	if len(buf) < 12 {
		return p, fmt.Errorf("undo payload too short: %d bytes", len(buf))
	}
	nq := binary.LittleEndian.Uint32(buf[0:])
	nn := binary.LittleEndian.Uint32(buf[4:])
	ni := binary.LittleEndian.Uint32(buf[8:])
	buf = buf[12:]
	p.Quads = make([]Quad, nq)
	c, err := binary.Decode(buf, binary.LittleEndian, p.Quads)
	if err != nil {
		return p, fmt.Errorf("could not decode undo quads: %w", err)
	}
	buf = buf[c:]
	p.Notes = make([]vimdaw.Note, nn)
	for i := range p.Notes {
		c, err := vimdaw.DecodeNote(buf, &p.Notes[i])
		if err != nil {
			return p, err
		}
		buf = buf[c:]
	}
	p.IDs = make([]uint64, ni)
	if _, err := binary.Decode(buf, binary.LittleEndian, p.IDs); err != nil {
		return p, fmt.Errorf("could not decode undo ids: %w", err)
	}
	return p, nil
}
