package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTemplateEngine_Render(t *testing.T) {
	e := NewTemplateEngine()
	subject, body, err := e.Render("alert-raised", map[string]string{
		"priority": "critical",
		"machine":  "Fresenius 4008S",
		"message":  "Maintenance 3 mois EN RETARD de 2 jour(s)",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "critical") || !strings.Contains(subject, "Fresenius 4008S") {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "EN RETARD de 2 jour(s)") {
		t.Errorf("body = %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("nope", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()
	subject, _, err := e.Render("maintenance-due", map[string]string{"machine": "M1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "{{cycle}}") {
		t.Errorf("expected unreplaced placeholder, got %q", subject)
	}
}

func TestNotifier_AllDelivered(t *testing.T) {
	mock := &MockEmailSender{}
	n := NewNotifier(mock, NewTemplateEngine())

	out := n.NotifyAll(context.Background(), "alert-raised",
		map[string]string{"machine": "M1", "priority": "high", "message": "due soon"},
		[]string{"a@hospital.test", "b@hospital.test"})

	if out.Failed() {
		t.Fatalf("unexpected failure: %v", out.Err)
	}
	if out.Attempted != 2 || out.Delivered != 2 {
		t.Errorf("outcome = %+v, want 2/2", out)
	}
	if len(mock.Calls()) != 2 {
		t.Errorf("expected 2 sends, got %d", len(mock.Calls()))
	}
}

func TestNotifier_FailureIsOutcomeNotError(t *testing.T) {
	mock := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	n := NewNotifier(mock, NewTemplateEngine())

	out := n.NotifyAll(context.Background(), "alert-raised",
		map[string]string{"machine": "M1"}, []string{"a@hospital.test"})

	if !out.Failed() {
		t.Fatal("expected failed outcome")
	}
	if out.Delivered != 0 || out.Attempted != 1 {
		t.Errorf("outcome = %+v, want attempted=1 delivered=0", out)
	}
	if out.ErrString() != "smtp down" {
		t.Errorf("ErrString = %q", out.ErrString())
	}
}

func TestNotifier_UnknownTemplateOutcome(t *testing.T) {
	n := NewNotifier(&MockEmailSender{}, NewTemplateEngine())
	out := n.NotifyAll(context.Background(), "missing", nil, []string{"a@hospital.test"})
	if !out.Failed() || out.Attempted != 0 {
		t.Errorf("outcome = %+v, want render failure before any attempt", out)
	}
}

func TestProviderSender_SendsRequest(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	s := NewProviderSender(ProviderConfig{APIURL: srv.URL, APIKey: "key-123", From: "noreply@hospital.test"})
	if err := s.SendEmail(context.Background(), "tech@hospital.test", "subject", "<p>hi</p>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer key-123" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if !strings.Contains(gotBody, "tech@hospital.test") || !strings.Contains(gotBody, "noreply@hospital.test") {
		t.Errorf("body = %q", gotBody)
	}
}

func TestProviderSender_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewProviderSender(ProviderConfig{APIURL: srv.URL, APIKey: "key-123", From: "noreply@hospital.test"})
	if err := s.SendEmail(context.Background(), "tech@hospital.test", "s", "b"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestProviderSender_MissingKey(t *testing.T) {
	s := NewProviderSender(ProviderConfig{APIURL: "http://unused", From: "noreply@hospital.test"})
	if err := s.SendEmail(context.Background(), "tech@hospital.test", "s", "b"); err == nil {
		t.Fatal("expected error when API key is missing")
	}
}
