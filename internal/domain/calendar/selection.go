package calendar

// DayIdentity distinguishes one rendered day control from its siblings.
type DayIdentity string

// NoDay is the selection value when no popover is open.
const NoDay DayIdentity = ""

// SelectionState records which day's popover is open, if any.
// Every DaySelector of a view holds the same *SelectionState.
// INVARIANT: at most one identity is current
// Not safe for concurrent use; the owner serializes access.
type SelectionState struct {
	committed DayIdentity
	working   DayIdentity
	depth     int
	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(prev, next DayIdentity)
}

// NewSelectionState returns a state with nothing selected.
func NewSelectionState() *SelectionState {
	return &SelectionState{}
}

// Current returns the identity whose popover is visible, or NoDay.
func (s *SelectionState) Current() DayIdentity {
	return s.committed
}

// Set writes a new value. Outside a batch it is published immediately.
// POST: observers are notified once if the published value changed
func (s *SelectionState) Set(id DayIdentity) {
	s.working = id
	if s.depth == 0 {
		s.publish()
	}
}

// Batch runs fn with publication deferred until fn returns, so every write
// made by fn is observed as a single update of the net value.
func (s *SelectionState) Batch(fn func()) {
	s.depth++
	defer func() {
		s.depth--
		if s.depth == 0 {
			s.publish()
		}
	}()
	fn()
}

// Subscribe registers fn to run after each published change.
// POST: returns a func that removes the subscription; calling it twice is a no-op
func (s *SelectionState) Subscribe(fn func(prev, next DayIdentity)) func() {
	s.nextObs++
	id := s.nextObs
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// pendingValue is the value writers compare against inside a batch.
func (s *SelectionState) pendingValue() DayIdentity {
	return s.working
}

func (s *SelectionState) publish() {
	if s.working == s.committed {
		return
	}
	prev := s.committed
	s.committed = s.working
	snapshot := append([]observer(nil), s.observers...)
	for _, o := range snapshot {
		o.fn(prev, s.committed)
	}
}
