/*
Package notify provides the engine's side channels: an in-process event log,
a webhook/chat notification fan-out, and an outbound-email renderer.

PURPOSE:
  These are best-effort collaborators. The tracking engine invokes them
  inline after a primary state change and swallows their failures; nothing
  here may roll back an insertion or a workflow transition.

NO NETWORK:
  Dispatch and Send enqueue to in-memory outboxes. Delivery is somebody
  else's problem; subscriptions store targets for reference only.

SEE ALSO:
  - outbox.go: Webhook/Slack fan-out
  - email.go: Template rendering and the mail outbox
*/
package notify

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVENT NAMES
// =============================================================================

const (
	EventEntryAdded      = "entry.added"
	EventEntrySubmitted  = "entry.submitted"
	EventEntryApproved   = "entry.approved"
	EventEntryRejected   = "entry.rejected"
	EventPeriodClosed    = "period.closed"
	EventBudgetThreshold = "budget.threshold"
)

// Event is an in-process domain event.
type Event struct {
	ID      string
	Name    string
	At      time.Time
	Payload map[string]any
}

// =============================================================================
// EVENT LOG - Append-only, in-process
// =============================================================================

type EventLog struct {
	events []Event
}

func NewEventLog() *EventLog { return &EventLog{} }

// Emit appends and returns the recorded event.
func (l *EventLog) Emit(name string, payload map[string]any) Event {
	ev := Event{ID: uuid.NewString(), Name: name, At: time.Now().UTC(), Payload: payload}
	l.events = append(l.events, ev)
	return ev
}

func (l *EventLog) All() []Event {
	return append([]Event(nil), l.events...)
}

// Names returns the emitted event names in order, a convenience for tests
// and demo output.
func (l *EventLog) Names() []string {
	names := make([]string, 0, len(l.events))
	for _, ev := range l.events {
		names = append(names, ev.Name)
	}
	return names
}

func (l *EventLog) Clear() { l.events = nil }
