package calendar

import (
	"fmt"
	"iter"
	"strings"

	"github.com/google/uuid"
)

// MonthDescriptor is the display name and day count for a month index.
type MonthDescriptor struct {
	Index       int // 0 = January
	DisplayName string
	DayCount    int
}

// monthTable holds the day counts the dashboard has always rendered.
// They are not calendar-correct (most months get one extra day and February
// never gets a leap day); see DESIGN.md before changing them.
var monthTable = [12]MonthDescriptor{
	{0, "January", 32},
	{1, "February", 29},
	{2, "March", 32},
	{3, "April", 31},
	{4, "May", 32},
	{5, "June", 31},
	{6, "July", 32},
	{7, "August", 32},
	{8, "September", 31},
	{9, "October", 32},
	{10, "November", 31},
	{11, "December", 32},
}

// DescribeMonth returns the descriptor for a month index in [0, 11].
// PRE: none
// POST: ok is false and the descriptor is zero for out-of-range input
func DescribeMonth(index int) (MonthDescriptor, bool) {
	if index < 0 || index >= len(monthTable) {
		return MonthDescriptor{}, false
	}
	return monthTable[index], true
}

// dayIdentity derives a sibling-unique identity from the view's mount token.
func dayIdentity(mount string, month, day int) DayIdentity {
	return DayIdentity(fmt.Sprintf("%s-%d-%d", mount, month, day))
}

// Render instantiates one DaySelector per day of the month, all wired to sel.
// The sequence is lazy and can be ranged over only once; later ranges yield nothing.
func Render(desc MonthDescriptor, mount string, sel *SelectionState, events *Interactions) iter.Seq[*DaySelector] {
	consumed := false
	return func(yield func(*DaySelector) bool) {
		if consumed {
			return
		}
		consumed = true
		for day := range desc.DayCount {
			d := newDaySelector(dayIdentity(mount, desc.Index, day), desc.Index, day, sel, events)
			if !yield(d) {
				return
			}
		}
	}
}

// MonthView owns the day controls of one month.
// Not safe for concurrent use.
type MonthView struct {
	descriptor MonthDescriptor
	hasMonth   bool
	mount      string
	newMount   func() string
	sel        *SelectionState
	events     *Interactions
	days       []*DaySelector
}

// Option configures a MonthView.
type Option func(*MonthView)

// WithSelection shares a parent's selection and interaction source instead of owning new ones.
func WithSelection(sel *SelectionState, events *Interactions) Option {
	return func(v *MonthView) {
		v.sel = sel
		v.events = events
	}
}

// WithMountSource overrides how mount tokens are generated.
func WithMountSource(fn func() string) Option {
	return func(v *MonthView) {
		v.newMount = fn
	}
}

// NewMonthView creates a view with no month selected.
// POST: the view owns a fresh SelectionState unless WithSelection is given
func NewMonthView(opts ...Option) *MonthView {
	v := &MonthView{newMount: uuid.NewString}
	for _, opt := range opts {
		opt(v)
	}
	if v.sel == nil {
		v.sel = NewSelectionState()
	}
	if v.events == nil {
		v.events = NewInteractions()
	}
	return v
}

// SetMonth switches the view to a month index.
// Switching to a different month tears down the current day controls and
// starts a new mount, so identities from the previous month never match again.
// PRE: none
// POST: returns false and leaves the view untouched for out-of-range input
func (v *MonthView) SetMonth(index int) bool {
	desc, ok := DescribeMonth(index)
	if !ok {
		return false
	}
	if v.hasMonth && desc.Index == v.descriptor.Index {
		return true
	}
	v.Close()
	v.descriptor = desc
	v.hasMonth = true
	v.mount = v.newMount()
	return true
}

// Descriptor returns the current month descriptor (zero before SetMonth succeeds).
func (v *MonthView) Descriptor() MonthDescriptor {
	return v.descriptor
}

// Selection returns the state shared by this view's day controls.
func (v *MonthView) Selection() *SelectionState {
	return v.sel
}

// Interactions returns the source outside-interaction listeners register with.
func (v *MonthView) Interactions() *Interactions {
	return v.events
}

// Render starts a new render pass. Day controls from the previous pass are
// released when the sequence is first ranged, not before; ranging it again
// yields nothing. If the pass stops before the open day, that day's control
// is still instantiated so its popover stays dismissable.
func (v *MonthView) Render() iter.Seq[*DaySelector] {
	started := false
	return func(yield func(*DaySelector) bool) {
		if started {
			return
		}
		started = true
		v.releaseDays()
		defer v.backOpenDay()
		for d := range Render(v.descriptor, v.mount, v.sel, v.events) {
			v.days = append(v.days, d)
			if !yield(d) {
				return
			}
		}
	}
}

// backOpenDay instantiates the control for this view's open day when the
// latest render pass did not reach it.
func (v *MonthView) backOpenDay() {
	cur := v.sel.Current()
	if !v.owns(cur) {
		return
	}
	if _, ok := v.Lookup(cur); ok {
		return
	}
	for day := range v.descriptor.DayCount {
		if id := dayIdentity(v.mount, v.descriptor.Index, day); id == cur {
			v.days = append(v.days, newDaySelector(id, v.descriptor.Index, day, v.sel, v.events))
			return
		}
	}
}

// owns reports whether id was minted by this view's current mount.
func (v *MonthView) owns(id DayIdentity) bool {
	if !v.hasMonth || id == NoDay {
		return false
	}
	return strings.HasPrefix(string(id), fmt.Sprintf("%s-%d-", v.mount, v.descriptor.Index))
}

// Days returns the day controls instantiated by the latest render pass.
func (v *MonthView) Days() []*DaySelector {
	return v.days
}

// Lookup finds a day control of the latest render pass by identity.
func (v *MonthView) Lookup(id DayIdentity) (*DaySelector, bool) {
	for _, d := range v.days {
		if d.id == id {
			return d, true
		}
	}
	return nil, false
}

// Interact delivers one physical input to the view.
func (v *MonthView) Interact(t Target) {
	Dispatch(v.sel, v.events, t, v.Lookup)
}

// Close tears the view down. A day of this mount holding the selection is
// closed whether or not a control backs it, and every listener is released.
func (v *MonthView) Close() {
	if v.owns(v.sel.Current()) {
		v.sel.Set(NoDay)
	}
	v.releaseDays()
}

func (v *MonthView) releaseDays() {
	for _, d := range v.days {
		d.close()
	}
	v.days = nil
}
