package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seamark/curio/internal/email"
)

func TestContactSend(t *testing.T) {
	t.Run("relays the message with reply-to", func(t *testing.T) {
		var sent *email.Message
		sender := &email.MockSender{
			SendFunc: func(ctx context.Context, msg *email.Message) (string, error) {
				sent = msg
				return "msg_1", nil
			},
		}
		h := NewContactHandler(sender, "noreply@curio.shop", "hello@curio.shop", testLogger())

		body := `{"name":"Ada","email":"ada@example.com","message":"Do you ship to Portugal?"}`
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Send(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if sent == nil {
			t.Fatal("no message sent")
		}
		if sent.ReplyTo != "ada@example.com" {
			t.Errorf("reply-to = %q", sent.ReplyTo)
		}
		if len(sent.To) != 1 || sent.To[0] != "hello@curio.shop" {
			t.Errorf("to = %v", sent.To)
		}
		if !strings.Contains(sent.Text, "Do you ship to Portugal?") {
			t.Errorf("text = %q", sent.Text)
		}
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		h := NewContactHandler(&email.MockSender{}, "noreply@curio.shop", "hello@curio.shop", testLogger())

		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(`{"name":"Ada"}`))
		rec := httptest.NewRecorder()
		h.Send(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("malformed email is rejected", func(t *testing.T) {
		h := NewContactHandler(&email.MockSender{}, "noreply@curio.shop", "hello@curio.shop", testLogger())

		body := `{"name":"Ada","email":"not-an-email","message":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Send(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unconfigured sender is a 502", func(t *testing.T) {
		h := NewContactHandler(email.Disabled{}, "noreply@curio.shop", "hello@curio.shop", testLogger())

		body := `{"name":"Ada","email":"ada@example.com","message":"hi"}`
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Send(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})
}
