package calendar

// Target describes where a physical input landed.
// The zero Target is an interaction outside every day control.
type Target struct {
	Day      DayIdentity // day control whose boundary contains the input, if any
	Activate bool        // input activated the day's button rather than its popover body
}

// Outside is an interaction that landed outside every day control.
var Outside = Target{}

// Interactions fans global interaction events out to the listeners that open
// day controls register while they are open.
// Not safe for concurrent use.
type Interactions struct {
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Target)
}

// NewInteractions returns a source with no listeners.
func NewInteractions() *Interactions {
	return &Interactions{}
}

// Listen registers fn for every subsequent interaction.
// POST: returns a release func; calling it more than once is a no-op
func (in *Interactions) Listen(fn func(Target)) func() {
	in.nextID++
	id := in.nextID
	in.listeners = append(in.listeners, listener{id: id, fn: fn})
	return func() {
		for i, l := range in.listeners {
			if l.id == id {
				in.listeners = append(in.listeners[:i:i], in.listeners[i+1:]...)
				return
			}
		}
	}
}

// Active returns the number of registered listeners.
func (in *Interactions) Active() int {
	return len(in.listeners)
}

func (in *Interactions) broadcast(t Target) {
	snapshot := append([]listener(nil), in.listeners...)
	for _, l := range snapshot {
		l.fn(t)
	}
}

// Dispatch delivers one physical input. Outside-interaction listeners run
// first, then the activated day (if any) toggles, and the selection is
// published once with the net result. Clicking another day while one is open
// therefore moves the popover without an intermediate closed state.
func Dispatch(sel *SelectionState, events *Interactions, t Target, lookup func(DayIdentity) (*DaySelector, bool)) {
	sel.Batch(func() {
		events.broadcast(t)
		if !t.Activate || t.Day == NoDay {
			return
		}
		if d, ok := lookup(t.Day); ok {
			d.Toggle()
		}
	})
}
