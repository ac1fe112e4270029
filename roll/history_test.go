package roll_test

import (
	"testing"
	"time"

	"github.com/vimdaw/vimdaw/roll"
)

func aliveQuads(m *roll.Model) map[uint64]roll.Quad {
	ret := map[uint64]roll.Quad{}
	for _, q := range m.Notes().Iterate {
		ret[q.ID] = q
	}
	return ret
}

func compareQuads(t *testing.T, what string, got, want map[uint64]roll.Quad) {
	t.Helper()
	if len(got) != len(want) {
		t.Errorf("%s: %d notes alive, want %d", what, len(got), len(want))
	}
	for id, w := range want {
		if g, ok := got[id]; !ok || g != w {
			t.Errorf("%s: note %d is %+v, want %+v", what, id, g, w)
		}
	}
}

func TestDeleteUndoRedo(t *testing.T) {
	for _, tc := range []struct {
		name   string
		setup  string
		delete string
		kind   roll.EditKind
	}{
		{"One", "2mtl<A-2>z<Space>ma", "x", roll.EditDeleteOne},
		{"BatchSame", "<A-3>3z<Space>ma", "dA", roll.EditDeleteBatchSame},
		{"Batch", "z<Space>mal2fz", "dA", roll.EditDeleteBatch},
	} {
		t.Run(tc.name, func(t *testing.T) {
			now := time.Unix(0, 0)
			m := newTestModel(t, nil, testConfig())
			press(t, m, tc.setup, now)
			before := aliveQuads(m)
			if len(before) == 0 {
				t.Fatalf("setup drew no notes")
			}
			press(t, m, tc.delete, now)
			after := aliveQuads(m)
			tree := m.UndoTree()
			if got := tree.Node(tree.Current()).Kind; got != tc.kind {
				t.Fatalf("delete recorded %v, want %v", got, tc.kind)
			}
			m.Notes().Compact()
			press(t, m, "u", now)
			compareQuads(t, "undo", aliveQuads(m), before)
			press(t, m, "<C-r>", now)
			compareQuads(t, "redo", aliveQuads(m), after)
			m.Notes().Compact()
			press(t, m, "u", now)
			compareQuads(t, "second undo", aliveQuads(m), before)
		})
	}
}

func TestUndoRefusedWhenStoreFull(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := testConfig()
	cfg.Roll.NoteQuadsMax = 4
	m := newTestModel(t, nil, cfg)
	press(t, m, "zx", now)
	deleted := m.UndoTree().Current()
	// notes that went in behind the history's back fill the store
	slots, err := m.Notes().Insert(quadAt(10, 10), 4)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	press(t, m, "u", now)
	if got := m.UndoTree().Current(); got != deleted {
		t.Errorf("refused undo moved the history to %d", got)
	}
	if a, ok := m.Alerts().Top(); !ok || a.Name != "StoreFull" {
		t.Errorf("got alert %+v, want StoreFull", a)
	}
	if got := m.Notes().Alive(); got != 4 {
		t.Errorf("refused undo left %d notes, want 4", got)
	}
	m.Notes().Kill(m.Notes().Quad(slots[0]).ID)
	press(t, m, "u", now)
	if got := m.UndoTree().Current(); got == deleted {
		t.Fatalf("undo with a free slot did not move the history")
	}
	if !m.Notes().IsAlive(0) {
		t.Errorf("undo did not bring back note 0")
	}
	if m.Notes().Len() > m.Notes().Cap() {
		t.Errorf("store holds %d of %d", m.Notes().Len(), m.Notes().Cap())
	}
}

func TestRestoreFollowsScreenSize(t *testing.T) {
	now := time.Unix(0, 0)
	m := newTestModel(t, nil, testConfig())
	press(t, m, "<Space>a", now)
	press(t, m, "ggz", now)
	g := m.Grid()
	g.Resize(1920/4, 1080/4)
	span := func() (rows, cols uint32) {
		v := g.Viewport
		return v.TopRow - v.BottomRow + 1, v.RightCol - v.LeftCol + 1
	}
	// 20x11 cells minus the gutter and the status bar
	if rows, cols := span(); rows != 8 || cols != 17 {
		t.Fatalf("resized viewport is %dx%d, want 8x17", rows, cols)
	}
	for _, seq := range []string{"u", "<C-r>", "<Space>1"} {
		press(t, m, seq, now)
		if rows, cols := span(); rows != 8 || cols != 17 {
			t.Errorf("%s restored a %dx%d viewport on an 8x17 screen", seq, rows, cols)
		}
		if c := g.Cursor; !g.Viewport.Contains(c.Row, c.Col) {
			t.Errorf("%s left cursor %d,%d outside of %+v", seq, c.Row, c.Col, g.Viewport)
		}
	}
}
