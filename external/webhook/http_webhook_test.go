package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/warlocks1507/checkin/internal/webhook"
)

func TestNotify_EmptyWebhookURL(t *testing.T) {
	notifier := NewHTTPNotifier("")
	if err := notifier.Notify(context.Background(), webhook.Notification{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestNotify_Success(t *testing.T) {
	var got webhook.Notification

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL)
	err := notifier.Notify(context.Background(), webhook.Notification{
		SchemaVersion: webhook.NotificationSchemaVersion,
		Event:         webhook.EventNeedHelp,
		StudentID:     7,
		StudentName:   "Ada Lovelace",
		WorkingOn:     "wiring",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Event != webhook.EventNeedHelp {
		t.Fatalf("expected event need_help, got %s", got.Event)
	}
	if got.StudentID != 7 || got.WorkingOn != "wiring" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestNotify_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL)
	if err := notifier.Notify(context.Background(), webhook.Notification{}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
