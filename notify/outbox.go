package notify

import "github.com/google/uuid"

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

type Channel string

const (
	ChannelWebhook Channel = "webhook"
	ChannelSlack   Channel = "slack"
)

// WebhookSubscription stores a target URL for reference. An empty Events
// list subscribes to everything.
type WebhookSubscription struct {
	ID     string
	URL    string
	Events []string
}

type SlackSubscription struct {
	ID      string
	Channel string // e.g. "#timesheets"
	Events  []string
}

// Outbound is a queued notification. Nothing is delivered; callers drain
// the outbox themselves.
type Outbound struct {
	ID      string
	Channel Channel
	Event   Event
	Target  string // URL or Slack channel
	Payload map[string]any
}

// =============================================================================
// HUB - Fan-out to subscription outboxes
// =============================================================================

type Hub struct {
	webhooks []WebhookSubscription
	slacks   []SlackSubscription
	outbox   []Outbound
}

func NewHub() *Hub { return &Hub{} }

func (h *Hub) SubscribeWebhook(sub WebhookSubscription) { h.webhooks = append(h.webhooks, sub) }
func (h *Hub) SubscribeSlack(sub SlackSubscription)     { h.slacks = append(h.slacks, sub) }

func (h *Hub) Outbox() []Outbound {
	return append([]Outbound(nil), h.outbox...)
}

func (h *Hub) ClearOutbox() { h.outbox = nil }

// Dispatch enqueues one Outbound per interested subscription.
func (h *Hub) Dispatch(ev Event) {
	for _, sub := range h.webhooks {
		if interested(sub.Events, ev.Name) {
			h.outbox = append(h.outbox, Outbound{
				ID:      uuid.NewString(),
				Channel: ChannelWebhook,
				Event:   ev,
				Target:  sub.URL,
				Payload: ev.Payload,
			})
		}
	}
	for _, sub := range h.slacks {
		if interested(sub.Events, ev.Name) {
			h.outbox = append(h.outbox, Outbound{
				ID:      uuid.NewString(),
				Channel: ChannelSlack,
				Event:   ev,
				Target:  sub.Channel,
				Payload: ev.Payload,
			})
		}
	}
}

// interested treats an empty filter as "all events".
func interested(filter []string, name string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == name {
			return true
		}
	}
	return false
}
