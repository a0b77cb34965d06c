package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventReservationMade      = "reservation_made"
	EventReservationCancelled = "reservation_cancelled"
	EventScheduleChanged      = "schedule_changed"
	EventAccountDeleted       = "account_deleted"
)

// ReservationEventPayload is the snapshot published for booking events.
type ReservationEventPayload struct {
	User      string `json:"user"`
	Day       string `json:"day"`
	Table     int    `json:"table,omitempty"`
	TimeSlot  int    `json:"time_slot,omitempty"`
	PartySize int    `json:"party_size,omitempty"`
	Special   bool   `json:"special,omitempty"`
	Surcharge int    `json:"surcharge,omitempty"`
}

// ScheduleEventPayload describes an admin closing-hours change.
type ScheduleEventPayload struct {
	Day          string `json:"day"`
	ClosingLater bool   `json:"closing_later"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
