package calendar

import "time"

// DayState is the popover state of one day control.
type DayState int

const (
	Closed DayState = iota
	Open
)

// String returns the state name.
func (s DayState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// DaySelector is the interactive control for one day of a MonthView.
// Its state is derived from the shared SelectionState, never stored locally.
type DaySelector struct {
	id     DayIdentity
	month  int
	day    int
	sel    *SelectionState
	events *Interactions

	unsubscribe func()
	release     func() // outside-interaction listener, held only while open
}

func newDaySelector(id DayIdentity, month, day int, sel *SelectionState, events *Interactions) *DaySelector {
	d := &DaySelector{id: id, month: month, day: day, sel: sel, events: events}
	d.unsubscribe = sel.Subscribe(d.observe)
	// A re-render of an open mount must pick the listener back up.
	d.observe(NoDay, sel.Current())
	return d
}

// ID returns the day control's identity.
func (d *DaySelector) ID() DayIdentity { return d.id }

// Month returns the month index the control belongs to.
func (d *DaySelector) Month() int { return d.month }

// Day returns the day index shown on the control.
func (d *DaySelector) Day() int { return d.day }

// State reports whether this day's popover is visible.
func (d *DaySelector) State() DayState {
	if d.sel.Current() == d.id {
		return Open
	}
	return Closed
}

// IsOpen is shorthand for State() == Open.
func (d *DaySelector) IsOpen() bool {
	return d.State() == Open
}

// Toggle handles explicit activation of the control.
// POST: the selection is this day if it was not before, NoDay otherwise
func (d *DaySelector) Toggle() {
	if d.sel.pendingValue() == d.id {
		d.sel.Set(NoDay)
		return
	}
	d.sel.Set(d.id)
}

// Dismiss closes the popover after an interaction outside the control.
// It does nothing if another day already holds the selection.
func (d *DaySelector) Dismiss() {
	if d.sel.pendingValue() == d.id {
		d.sel.Set(NoDay)
	}
}

// Contains reports whether t landed inside this control or its popover.
func (d *DaySelector) Contains(t Target) bool {
	return t.Day == d.id
}

// IsToday reports whether the control's (month, day) matches now.
// The day index is compared with the day of the month as shown on the control.
func (d *DaySelector) IsToday(now time.Time) bool {
	return int(now.Month())-1 == d.month && now.Day() == d.day
}

// Popover returns the (month, day) the event popover should show.
// ok is false while the control is closed.
func (d *DaySelector) Popover() (month, day int, ok bool) {
	if !d.IsOpen() {
		return 0, 0, false
	}
	return d.month, d.day, true
}

// Listening reports whether the control currently holds an outside-interaction listener.
func (d *DaySelector) Listening() bool {
	return d.release != nil
}

func (d *DaySelector) observe(_, next DayIdentity) {
	if next == d.id {
		if d.release == nil {
			d.release = d.events.Listen(d.onInteraction)
		}
		return
	}
	d.releaseListener()
}

func (d *DaySelector) onInteraction(t Target) {
	if !d.Contains(t) {
		d.Dismiss()
	}
}

func (d *DaySelector) releaseListener() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// close detaches the control from the shared state and releases its listener.
func (d *DaySelector) close() {
	d.releaseListener()
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}
