package roll

import (
	"fmt"

	"github.com/vimdaw/vimdaw/keys"
)

// Views returns the Views view of the model: a bounded list of saved cursor
// and viewport snapshots that can be jumped back to.
func (m *Model) Views() *ViewsModel { return (*ViewsModel)(m) }

type (
	ViewsModel Model

	viewJump struct {
		*ViewsModel
		index int // 1-based
	}

	viewSelect struct {
		*ViewsModel
		delta int
	}

	viewMove struct {
		*ViewsModel
		delta int
	}

	viewSave           ViewsModel
	viewClear          ViewsModel
	viewsMode          ViewsModel
	viewJumpSelected   ViewsModel
	viewDeleteSelected ViewsModel
)

// Len returns the number of saved views.
func (m *ViewsModel) Len() int { return len(m.views) }

// Selected returns the index of the view selected in the views mode.
func (m *ViewsModel) Selected() int { return m.viewIndex }

// Iterate yields the saved views in order.
func (m *ViewsModel) Iterate(yield func(int, Snapshot) bool) {
	for i, v := range m.views {
		if !yield(i, v) {
			return
		}
	}
}

// Save returns an Action appending the current cursor and viewport to the
// saved views.
func (m *ViewsModel) Save() Action { return MakeAction((*viewSave)(m)) }

func (m *viewSave) Do() {
	if len(m.views) >= m.cfg.Roll.ViewsSaved {
		(*Model)(m).Alerts().AddNamed("ViewsFull", fmt.Sprintf("all %d view slots are taken", m.cfg.Roll.ViewsSaved), Warning)
		return
	}
	m.views = append(m.views, m.grid.Snapshot())
	(*Model)(m).Alerts().AddNamed("ViewSaved", fmt.Sprintf("view %d saved", len(m.views)), Info)
}

// Clear returns an Action dropping all saved views.
func (m *ViewsModel) Clear() Action { return MakeAction((*viewClear)(m)) }

func (m *viewClear) Do() {
	m.views = m.views[:0]
	m.viewIndex = 0
}

// Jump returns an Action restoring the saved view number index, counting
// from 1.
func (m *ViewsModel) Jump(index int) Action { return MakeAction(viewJump{m, index}) }

func (m viewJump) Enabled() bool { return m.index >= 1 && m.index <= len(m.views) }
func (m viewJump) Do()           { m.grid.Restore(m.views[m.index-1]) }

// ToggleMode returns an Action entering or leaving the views mode.
func (m *ViewsModel) ToggleMode() Action { return MakeAction((*viewsMode)(m)) }

func (m *viewsMode) Do() {
	mode := keys.ModeViews
	if m.mode == keys.ModeViews {
		mode = keys.ModeNormal
	}
	m.viewIndex = min(m.viewIndex, max(len(m.views)-1, 0))
	(*Model)(m).SetMode(mode)
	if mode == keys.ModeViews {
		msg := fmt.Sprintf("%d saved views", len(m.views))
		(*Model)(m).Alerts().AddNamed("ViewsMode", (*Model)(m).makeHint(msg, ", jump with %s", "views_jump"), Info)
	}
}

// Select returns an Action moving the selection of the views mode by delta.
func (m *ViewsModel) Select(delta int) Action { return MakeAction(viewSelect{m, delta}) }

func (m viewSelect) Enabled() bool { return len(m.views) > 0 }
func (m viewSelect) Do() {
	m.viewIndex = max(min(m.viewIndex+m.delta, len(m.views)-1), 0)
}

// JumpSelected returns an Action restoring the selected view and leaving the
// views mode.
func (m *ViewsModel) JumpSelected() Action { return MakeAction((*viewJumpSelected)(m)) }

func (m *viewJumpSelected) Enabled() bool { return m.viewIndex < len(m.views) }
func (m *viewJumpSelected) Do() {
	m.grid.Restore(m.views[m.viewIndex])
	(*Model)(m).SetMode(keys.ModeNormal)
}

// DeleteSelected returns an Action removing the selected view.
func (m *ViewsModel) DeleteSelected() Action { return MakeAction((*viewDeleteSelected)(m)) }

func (m *viewDeleteSelected) Enabled() bool { return m.viewIndex < len(m.views) }
func (m *viewDeleteSelected) Do() {
	m.views = append(m.views[:m.viewIndex], m.views[m.viewIndex+1:]...)
	m.viewIndex = max(min(m.viewIndex, len(m.views)-1), 0)
}

// MoveSelected returns an Action swapping the selected view with its
// neighbour delta steps away; the selection follows the view.
func (m *ViewsModel) MoveSelected(delta int) Action { return MakeAction(viewMove{m, delta}) }

func (m viewMove) Enabled() bool {
	to := m.viewIndex + m.delta
	return m.viewIndex < len(m.views) && to >= 0 && to < len(m.views)
}

func (m viewMove) Do() {
	to := m.viewIndex + m.delta
	m.views[m.viewIndex], m.views[to] = m.views[to], m.views[m.viewIndex]
	m.viewIndex = to
}
