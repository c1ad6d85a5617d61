// Package mailer provides best-effort outbound email for technician
// notifications: a provider HTTP client, template rendering, and a typed
// delivery outcome so callers can report failures without propagating them.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// EmailSender is the interface for sending a single email message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// ---------------------------------------------------------------------------
// Provider client
// ---------------------------------------------------------------------------

// ProviderConfig configures the outbound email provider API.
type ProviderConfig struct {
	APIURL string
	APIKey string
	From   string
}

// ProviderSender sends email through a JSON-over-HTTP provider API.
type ProviderSender struct {
	cfg    ProviderConfig
	client *http.Client
}

func NewProviderSender(cfg ProviderConfig) *ProviderSender {
	return &ProviderSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type providerPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *ProviderSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if s.cfg.APIKey == "" {
		return errors.New("mail provider API key is not configured")
	}

	payload, err := json.Marshal(providerPayload{
		From:    s.cfg.From,
		To:      to,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail provider returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// Template defines a reusable notification template.
type Template struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateEngine manages notification templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "maintenance-due",
			Subject: "Maintenance {{cycle}} - {{machine}}",
			Body:    "<p>La maintenance {{cycle}} de la machine <b>{{machine}}</b> est {{urgency}}.</p><p>Action requise : {{action}}</p>",
		},
		{
			ID:      "alert-raised",
			Subject: "[{{priority}}] Alerte équipement - {{machine}}",
			Body:    "<p>{{message}}</p><p>Machine : <b>{{machine}}</b><br>Priorité : {{priority}}</p>",
		},
		{
			ID:      "fault-reported",
			Subject: "Nouvelle panne signalée - {{machine}}",
			Body:    "<p>Une panne a été signalée sur la machine <b>{{machine}}</b> : {{title}}</p>",
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are
// left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, nil
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

// Outcome reports what happened to a best-effort delivery. Err carries the
// first failure; it is informational and must not be treated as a write error.
type Outcome struct {
	Attempted int   `json:"attempted"`
	Delivered int   `json:"delivered"`
	Err       error `json:"-"`
}

// Failed reports whether any delivery failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// ErrString returns the failure message, or "" when everything delivered.
func (o Outcome) ErrString() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// Notifier fans a rendered template out to a recipient list.
type Notifier struct {
	sender    EmailSender
	templates *TemplateEngine
}

func NewNotifier(sender EmailSender, templates *TemplateEngine) *Notifier {
	return &Notifier{sender: sender, templates: templates}
}

// NotifyAll renders the template and sends it to every recipient. Individual
// failures do not stop the fan-out; the aggregate result is returned as an
// Outcome, never as an error.
func (n *Notifier) NotifyAll(ctx context.Context, templateID string, data map[string]string, recipients []string) Outcome {
	out := Outcome{}

	subject, body, err := n.templates.Render(templateID, data)
	if err != nil {
		out.Err = err
		return out
	}

	for _, to := range recipients {
		out.Attempted++
		if err := n.sender.SendEmail(ctx, to, subject, body); err != nil {
			if out.Err == nil {
				out.Err = err
			}
			continue
		}
		out.Delivered++
	}
	return out
}

// ---------------------------------------------------------------------------
// Test double
// ---------------------------------------------------------------------------

// EmailCall records a single call to SendEmail.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender is a test double for EmailSender.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

// SendEmail records the call and optionally returns an error.
func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}
