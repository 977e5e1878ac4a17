package store

import "time"

// EventType labels the repository operations observers can subscribe to.
type EventType string

const (
	EventExists    EventType = "exists"
	EventInsert    EventType = "insert"
	EventUpdate    EventType = "update"
	EventDelete    EventType = "delete"
	EventIntegrity EventType = "integrity_violation"
)

// Event describes one repository operation.
type Event struct {
	Type      EventType
	Entity    string
	PK        string
	Fields    []string
	Matched   bool
	Timestamp time.Time
	Err       error
}

// Observer receives repository lifecycle events. Implementations must be
// safe for concurrent use; the repository calls them synchronously.
type Observer interface {
	OnEvent(event Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(event Event) { f(event) }
