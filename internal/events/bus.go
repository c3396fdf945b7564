package events

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Event is an in-process record of something that happened to an aggregate.
type Event struct {
	Topic       string
	AggregateID string
	Payload     any
	OccurredAt  time.Time
}

// Notifier reacts to emitted events (logging, counters, etc.).
type Notifier interface {
	Notify(event Event) error
}

// Bus fans emitted events out to downstream notifiers synchronously. A nil
// bus is valid and drops everything, so callers never need to guard emits.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit dispatches the event to all configured notifiers. Notifier failures
// are joined and returned but must not abort the emitting operation.
func (b *Bus) Emit(topic, aggregateID string, payload any) error {
	if b == nil {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	ev := Event{
		Topic:       topic,
		AggregateID: strings.TrimSpace(aggregateID),
		Payload:     payload,
		OccurredAt:  now(),
	}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if notifyErr := notifier.Notify(ev); notifyErr != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", notifyErr))
		}
	}
	return joined
}

// LogNotifier writes events as structured log lines. When Topics is set,
// events outside that list are dropped silently.
type LogNotifier struct {
	Log    zerolog.Logger
	Topics []string
}

// Notify implements Notifier.
func (n LogNotifier) Notify(ev Event) error {
	if len(n.Topics) > 0 && !slices.Contains(n.Topics, ev.Topic) {
		return nil
	}
	n.Log.Info().
		Str("topic", ev.Topic).
		Str("aggregate_id", ev.AggregateID).
		Interface("payload", ev.Payload).
		Msg("domain_event")
	return nil
}
