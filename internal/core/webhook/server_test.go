package webhook

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestServer_PublishesDecodedEvents(t *testing.T) {
	hub := NewHub()
	var received []Event
	hub.Subscribe(func(evt Event) { received = append(received, evt) })

	srv := NewServer(hub)

	req := httptest.NewRequest("POST", Path, strings.NewReader(`{"from":"6281234567890@c.us","text":"halo"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var out map[string]string
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("response not JSON: %s", body)
	}
	if out["kind"] != "message" {
		t.Fatalf("kind = %q, want message", out["kind"])
	}
	if len(received) != 1 || received[0].Message.TextValue() != "halo" {
		t.Fatalf("received = %+v", received)
	}
}

func TestServer_RejectsMalformedPayload(t *testing.T) {
	hub := NewHub()
	published := 0
	hub.Subscribe(func(Event) { published++ })

	srv := NewServer(hub)

	for _, body := range []string{`not json`, `{"type":"status","messageId":"m1"}`} {
		req := httptest.NewRequest("POST", Path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := srv.App().Test(req)
		if err != nil {
			t.Fatalf("Test() error = %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, resp.StatusCode)
		}
	}
	if published != 0 {
		t.Fatalf("published %d events for rejected payloads", published)
	}
}
