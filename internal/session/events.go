// internal/session/events.go
//
// Change notifications. Every applied change carries a snapshot with a
// strictly increasing Version so listeners can drop late deliveries.

package session

import "github.com/google/uuid"

// EventKind names what changed.
type EventKind string

const (
	EventCards     EventKind = "cards"     // count or card ids changed
	EventSelection EventKind = "selection" // another card is under edit
	EventBuffer    EventKind = "buffer"    // edit buffer changed
	EventCommitted EventKind = "committed" // buffer written to a card
	EventCalled    EventKind = "called"    // called numbers changed
	EventPattern   EventKind = "pattern"   // active pattern changed
	EventPending   EventKind = "pending"   // typed card count changed

	// EventSnapshot is never emitted by the Manager; feeds use it for the
	// initial state sent to a new listener.
	EventSnapshot EventKind = "snapshot"
)

// Event is delivered to observers after a change has been applied.
type Event struct {
	Kind     EventKind `json:"kind"`
	Snapshot Snapshot  `json:"snapshot"`
}

type observer struct {
	id string
	fn func(Event)
}

// Subscribe registers fn to be called after every state change. fn runs
// synchronously on the mutating goroutine, outside the session lock, so it
// may call back into the Manager. Concurrent changes can reach fn out of
// order; compare Snapshot.Version to keep the newest. The returned func
// removes fn.
func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	id := uuid.NewString()
	m.obsMu.Lock()
	m.observers = append(m.observers, observer{id: id, fn: fn})
	m.obsMu.Unlock()

	return func() {
		m.obsMu.Lock()
		defer m.obsMu.Unlock()
		for i, o := range m.observers {
			if o.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

// eventLocked bumps the version and captures the event for a change that
// has just been applied. Caller holds m.mu.
func (m *Manager) eventLocked(kind EventKind) Event {
	m.version++
	return Event{Kind: kind, Snapshot: m.snapshotLocked()}
}

func (m *Manager) emit(ev Event) {
	m.obsMu.Lock()
	obs := make([]observer, len(m.observers))
	copy(obs, m.observers)
	m.obsMu.Unlock()

	for _, o := range obs {
		o.fn(ev)
	}
}
