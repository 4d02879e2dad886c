package character

// EventKind identifies character events.
type EventKind string

const (
	EventLanded       EventKind = "landed"
	EventLeftGround   EventKind = "left_ground"
	EventJumped       EventKind = "jumped"
	EventAirJumped    EventKind = "air_jumped"
	EventFellThrough  EventKind = "fell_through"
	EventStateChanged EventKind = "state_changed"
	EventFlowCycle    EventKind = "flow_cycle"
)

// Event is emitted when the character's contact, state or flow changes.
type Event struct {
	Kind EventKind
	From string
	To   string
	Err  error
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
