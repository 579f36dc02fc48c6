package notify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// EMAIL - Templates, rendering, outbox
// =============================================================================

type TemplateName string

const (
	TemplateEntrySubmitted TemplateName = "entry_submitted"
	TemplateEntryApproved  TemplateName = "entry_approved"
	TemplateEntryRejected  TemplateName = "entry_rejected"
	TemplatePeriodClosed   TemplateName = "period_closed"
)

// Template subjects and bodies may contain {{var}} tokens.
type Template struct {
	ID      string
	Name    TemplateName
	Subject string
	Body    string
}

type Message struct {
	ID      string
	To      []string
	Subject string
	Body    string
	Meta    map[string]any
}

type Rendered struct {
	Subject string
	Body    string
}

var tokenPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Mailer renders templates and queues messages. Send never delivers; the
// outbox is inspected by callers.
type Mailer struct {
	templates map[TemplateName]Template
	outbox    []Message
}

func NewMailer() *Mailer {
	return &Mailer{templates: make(map[TemplateName]Template)}
}

func (m *Mailer) AddTemplate(t Template) { m.templates[t.Name] = t }

func (m *Mailer) Template(name TemplateName) (Template, bool) {
	t, ok := m.templates[name]
	return t, ok
}

func (m *Mailer) Templates() []Template {
	out := make([]Template, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out
}

// Render fills {{var}} tokens from vars; unknown tokens render empty.
func (m *Mailer) Render(name TemplateName, vars map[string]string) (Rendered, error) {
	t, ok := m.templates[name]
	if !ok {
		return Rendered{}, fmt.Errorf("template not found: %s", name)
	}
	fill := func(s string) string {
		return tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
			key := strings.TrimSpace(tokenPattern.FindStringSubmatch(match)[1])
			return vars[key]
		})
	}
	return Rendered{Subject: fill(t.Subject), Body: fill(t.Body)}, nil
}

// Send queues the message, assigning an ID when absent.
func (m *Mailer) Send(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	m.outbox = append(m.outbox, msg)
}

func (m *Mailer) Outbox() []Message {
	return append([]Message(nil), m.outbox...)
}

func (m *Mailer) Clear() { m.outbox = nil }
