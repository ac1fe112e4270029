package roll_test

import (
	"errors"
	"testing"

	"github.com/vimdaw/vimdaw/roll"
)

func quadAt(row, col uint32) roll.Quad {
	return roll.Quad{Row: row, Col: col, SubCells: 1, Width: roll.Fraction{Num: 1, Den: 1}, Layer: 1, Gain: 1}
}

func TestNotesInsertAndCompact(t *testing.T) {
	n := roll.NewNotes(8)
	slots, err := n.Insert(quadAt(60, 0), 3)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(slots) != 3 || n.Len() != 3 || n.Alive() != 3 {
		t.Fatalf("got %d slots, len %d, alive %d, want 3 each", len(slots), n.Len(), n.Alive())
	}
	for i, s := range slots {
		if id := n.Quad(s).ID; id != uint64(i) {
			t.Errorf("slot %d has id %d, want %d", s, id, i)
		}
	}
	if !n.Kill(1) {
		t.Fatalf("Kill(1) reported the note dead already")
	}
	if n.Kill(1) {
		t.Errorf("second Kill(1) reported the note alive")
	}
	if got := n.Compact(); got != 1 {
		t.Errorf("Compact reclaimed %d slots, want 1", got)
	}
	if n.Len() != 2 {
		t.Errorf("len %d after compaction, want 2", n.Len())
	}
	if s, ok := n.Find(2); !ok || s != 1 {
		t.Errorf("note 2 is in slot %d (found %v), want slot 1", s, ok)
	}
	if _, ok := n.Find(1); ok {
		t.Errorf("compacted note 1 can still be found")
	}
	// ids are never reused
	slots, _ = n.Insert(quadAt(60, 0), 1)
	if id := n.Quad(slots[0]).ID; id != 3 {
		t.Errorf("new note got id %d, want 3", id)
	}
}

func TestNotesStoreFull(t *testing.T) {
	n := roll.NewNotes(4)
	if _, err := n.Insert(quadAt(60, 0), 4); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	n.Kill(0)
	if _, err := n.Insert(quadAt(60, 0), 2); !errors.Is(err, roll.ErrStoreFull) {
		t.Fatalf("got %v, want ErrStoreFull", err)
	}
	if n.Alive() != 3 {
		t.Errorf("rejected insert changed the store: %d alive", n.Alive())
	}
	if _, err := n.Insert(quadAt(60, 0), 1); err != nil {
		t.Errorf("insert into a compactable slot failed: %v", err)
	}
	if _, err := n.Insert(quadAt(60, 0), 5); !errors.Is(err, roll.ErrStoreFull) {
		t.Errorf("insert above capacity: got %v, want ErrStoreFull", err)
	}
}

func TestNotesRevive(t *testing.T) {
	n := roll.NewNotes(4)
	slots, _ := n.Insert(quadAt(60, 0), 2)
	q := n.Quad(slots[0])
	n.Kill(q.ID)
	n.Compact()
	q.Mute = true
	if err := n.Revive(q); err != nil {
		t.Fatalf("Revive: %v", err)
	}
	s, ok := n.Find(q.ID)
	if !ok {
		t.Fatalf("revived note not found")
	}
	if got := n.Quad(s); !got.Alive || !got.Mute {
		t.Errorf("revived quad %+v, want alive and muted", got)
	}
	if n.NextID() != 2 {
		t.Errorf("next id %d, want 2", n.NextID())
	}
}

func TestMatchAtCursor(t *testing.T) {
	n := roll.NewNotes(16)
	n.Insert(quadAt(60, 2), 1)
	half := quadAt(60, 4)
	half.SubCol, half.SubCells = 1, 2
	n.Insert(half, 1)
	n.Insert(quadAt(61, 2), 1)
	other := quadAt(60, 2)
	other.Layer = 2
	n.Insert(other, 1)

	c := roll.Cursor{Row: 60, Col: 2, Width: roll.Fraction{Num: 1, Den: 1}, Nav: roll.Fraction{Num: 1, Den: 1}, RowNav: roll.Fraction{Num: 1, Den: 1}}
	if got := n.MatchAtCursor(c, 1, 0); len(got) != 1 || n.Quad(got[0]).ID != 0 {
		t.Errorf("match at column 2: got slots %v, want note 0", got)
	}
	if got := n.MatchAtCursor(c, 3, 0); len(got) != 1 || n.Quad(got[0]).ID != 3 {
		t.Errorf("match on both layers: got slots %v, want the last note 3", got)
	}
	// the cursor spans [4,5), the note [4.5,5.5)
	c.Col = 4
	if got := n.MatchAtCursor(c, 1, 0); len(got) != 1 || n.Quad(got[0]).ID != 1 {
		t.Errorf("match of a sub-cell note: got slots %v, want note 1", got)
	}
	// [3,4) only touches [4.5,5.5) at neither end
	c.Col = 3
	if got := n.MatchAtCursor(c, 1, 0); len(got) != 0 {
		t.Errorf("match at column 3: got slots %v, want none", got)
	}
	n.SetHidden([]int{0}, true)
	c.Col = 2
	if got := n.MatchAtCursor(c, 1, 5); len(got) != 0 {
		t.Errorf("hidden note matched: %v", got)
	}
}

func TestSelect(t *testing.T) {
	n := roll.NewNotes(16)
	n.Insert(quadAt(60, 0), 1)
	n.Insert(quadAt(60, 50), 1)
	n.Insert(quadAt(10, 0), 1)
	v := roll.Viewport{LeftCol: 0, RightCol: 20, BottomRow: 50, TopRow: 70}
	if got := n.Select(roll.SelectInView, v, 1); len(got) != 1 || got[0] != 0 {
		t.Errorf("in view: got %v, want [0]", got)
	}
	if got := n.Select(roll.SelectOutsideView, v, 1); len(got) != 2 {
		t.Errorf("outside view: got %v, want 2 slots", got)
	}
	if got := n.Select(roll.SelectAll, v, 2); len(got) != 0 {
		t.Errorf("all on an empty layer: got %v", got)
	}
}
