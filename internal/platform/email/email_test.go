package email

import (
	"context"
	"strings"
	"testing"

	"hrdesk/internal/platform/config"
)

func TestBuildMessageHasTextAndHTMLParts(t *testing.T) {
	msg, err := buildMessage("hr@example.com", "ana@example.com", "Ticket updated", "Your ticket **Laptop broken** was resolved.")
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	out := string(msg)
	for _, want := range []string{
		"From: hr@example.com\r\n",
		"To: ana@example.com\r\n",
		"Subject: Ticket updated\r\n",
		"multipart/alternative",
		"text/plain",
		"Your ticket **Laptop broken** was resolved.",
		"text/html",
		"<strong>Laptop broken</strong>",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("message missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHTMLOmitsRawHTML(t *testing.T) {
	out, err := renderHTML("<script>alert(1)</script>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") || !strings.Contains(out, "raw HTML omitted") {
		t.Fatalf("raw html passed through: %s", out)
	}
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	msg, err := buildMessage("a@example.com", "b@example.com", "Évaluation prête", "ok")
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	if !strings.Contains(string(msg), "Subject: =?utf-8?q?") {
		t.Fatalf("expected encoded subject:\n%s", msg)
	}
}

func TestNewReturnsNoopWhenDisabled(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a", "b", "c", "d"); err != nil {
		t.Fatalf("noop send: %v", err)
	}
}
