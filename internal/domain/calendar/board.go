package calendar

import "github.com/google/uuid"

// Board is the year page: twelve month views sharing one selection, so at
// most one popover is open across the whole year.
// Not safe for concurrent use.
type Board struct {
	sel    *SelectionState
	events *Interactions
	months []*MonthView
}

// NewBoard creates a board with one view per month. mount may be nil, in
// which case each view mounts with a random token.
func NewBoard(mount func() string) *Board {
	if mount == nil {
		mount = uuid.NewString
	}
	b := &Board{sel: NewSelectionState(), events: NewInteractions()}
	for i := range monthTable {
		v := NewMonthView(WithSelection(b.sel, b.events), WithMountSource(mount))
		v.SetMonth(i)
		b.months = append(b.months, v)
	}
	return b
}

// Months returns the month views in calendar order.
func (b *Board) Months() []*MonthView {
	return b.months
}

// Selection returns the board's shared selection.
func (b *Board) Selection() *SelectionState {
	return b.sel
}

// Interactions returns the board's interaction source.
func (b *Board) Interactions() *Interactions {
	return b.events
}

// Lookup finds a day control in any month's latest render pass.
func (b *Board) Lookup(id DayIdentity) (*DaySelector, bool) {
	for _, v := range b.months {
		if d, ok := v.Lookup(id); ok {
			return d, true
		}
	}
	return nil, false
}

// Interact delivers one physical input to the board.
func (b *Board) Interact(t Target) {
	Dispatch(b.sel, b.events, t, b.Lookup)
}

// Open returns the day control whose popover is visible.
func (b *Board) Open() (*DaySelector, bool) {
	cur := b.sel.Current()
	if cur == NoDay {
		return nil, false
	}
	return b.Lookup(cur)
}

// Close tears down every month view.
func (b *Board) Close() {
	for _, v := range b.months {
		v.Close()
	}
}
