package roll_test

import (
	"errors"
	"testing"

	"github.com/vimdaw/vimdaw"
	"github.com/vimdaw/vimdaw/arena"
	"github.com/vimdaw/vimdaw/roll"
)

func record(t *roll.UndoTree, id uint64) roll.NodeIndex {
	q := quadAt(60, uint32(id))
	q.ID = id
	return t.Record(roll.EditAddOne, roll.EditPayload{Quads: []roll.Quad{q}, Notes: []vimdaw.Note{{ID: id, Pitch: 60}}}, roll.Snapshot{})
}

func TestUndoPayloadRoundTrip(t *testing.T) {
	tree := roll.NewUndoTree(arena.New(1<<12, 16))
	q := quadAt(61, 7)
	q.ID, q.Mute, q.SubCol, q.SubCells = 42, true, 1, 3
	p := roll.EditPayload{
		Quads: []roll.Quad{q},
		Notes: []vimdaw.Note{{ID: 42, Pitch: 61, StartFrames: 100, DurationFrames: 200, Layer: 1, Gain: 0.5}},
		IDs:   []uint64{42, 43, 44},
	}
	n := tree.Record(roll.EditAddBatchSame, p, roll.Snapshot{})
	got, err := tree.Payload(n)
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if len(got.Quads) != 1 || got.Quads[0] != q {
		t.Errorf("quads %+v, want %+v", got.Quads, p.Quads)
	}
	if len(got.Notes) != 1 || got.Notes[0] != p.Notes[0] {
		t.Errorf("notes %+v, want %+v", got.Notes, p.Notes)
	}
	if len(got.IDs) != 3 || got.IDs[2] != 44 {
		t.Errorf("ids %v, want %v", got.IDs, p.IDs)
	}
}

func TestUndoRedoLinear(t *testing.T) {
	tree := roll.NewUndoTree(arena.New(1<<12, 16))
	a := record(tree, 0)
	b := record(tree, 1)
	if got := tree.Undo(); got != b {
		t.Fatalf("Undo = %d, want %d", got, b)
	}
	if got := tree.Undo(); got != a {
		t.Fatalf("Undo = %d, want %d", got, a)
	}
	if got := tree.Undo(); got != roll.NoNode {
		t.Fatalf("Undo at the start = %d, want NoNode", got)
	}
	if to, _, switched := tree.Redo(); to != a || switched {
		t.Fatalf("Redo = %d switched %v, want %d", to, switched, a)
	}
	if to, _, _ := tree.Redo(); to != b {
		t.Fatalf("Redo = %d, want %d", to, b)
	}
	if to, _, _ := tree.Redo(); to != roll.NoNode {
		t.Fatalf("Redo at the end = %d, want NoNode", to)
	}
}

func TestUndoBranches(t *testing.T) {
	tree := roll.NewUndoTree(arena.New(1<<12, 16))
	a := record(tree, 0)
	b := record(tree, 1)
	tree.Undo()
	c := record(tree, 2)
	if tree.Len() != 3 {
		t.Fatalf("tree has %d nodes, want 3", tree.Len())
	}
	// b survives as the alternative of c
	if got := tree.Node(c).AltNext; got != b {
		t.Errorf("AltNext of the new edit = %d, want %d", got, b)
	}
	if tree.Node(c).Branch == tree.Node(a).Branch {
		t.Errorf("new edit after undo stayed on branch %d", tree.Node(c).Branch)
	}
	// at the tip of c, redo switches to b
	to, from, switched := tree.Redo()
	if to != b || from != c || !switched {
		t.Fatalf("Redo = %d from %d switched %v, want %d from %d switched", to, from, switched, b, c)
	}
	if tree.Current() != b {
		t.Errorf("current %d, want %d", tree.Current(), b)
	}
	tree.Undo()
	if to, _, _ := tree.Redo(); to != b {
		t.Errorf("after the switch redo goes to %d, want %d", to, b)
	}
	tree.Undo()
	if !tree.Alternate() {
		t.Fatalf("Alternate found no branch")
	}
	if to, _, _ := tree.Redo(); to != c {
		t.Errorf("after Alternate redo goes to %d, want %d", to, c)
	}
	if tree.Siblings() != 0 {
		t.Errorf("tip has %d continuations, want 0", tree.Siblings())
	}
}

func TestUndoFromEmptyHistory(t *testing.T) {
	tree := roll.NewUndoTree(arena.New(1<<12, 16))
	a := record(tree, 0)
	tree.Undo()
	b := record(tree, 1)
	if tree.Root() != a {
		t.Errorf("root %d, want %d", tree.Root(), a)
	}
	tree.Undo()
	if tree.Siblings() != 2 {
		t.Fatalf("empty history has %d continuations, want 2", tree.Siblings())
	}
	if to, _, _ := tree.Redo(); to != b {
		t.Errorf("Redo = %d, want the newest edit %d", to, b)
	}
}

func TestUndoArenaOverflow(t *testing.T) {
	tree := roll.NewUndoTree(arena.New(256, 64))
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, arena.ErrOutOfMemory) {
			t.Errorf("recovered %v, want ErrOutOfMemory", r)
		}
	}()
	for i := uint64(0); i < 100; i++ {
		record(tree, i)
	}
	t.Errorf("recording 100 edits into 256 bytes did not panic")
}
