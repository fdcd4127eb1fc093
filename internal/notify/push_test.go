package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/config"
)

func testPushConfig(url string) config.PushConfig {
	return config.PushConfig{
		Enabled:    true,
		GatewayURL: url,
		APIKey:     "test-key",
		Timeout:    5,
	}
}

func TestNewPushDispatcher_Disabled(t *testing.T) {
	cfg := testPushConfig("http://localhost:0")
	cfg.Enabled = false

	_, err := NewPushDispatcher(cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("NewPushDispatcher() error = %v, want ErrDisabled", err)
	}
}

func TestPushDeliver(t *testing.T) {
	var got pushRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send" {
			t.Errorf("path = %q, want /send", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d, err := NewPushDispatcher(testPushConfig(server.URL))
	if err != nil {
		t.Fatalf("NewPushDispatcher() error = %v", err)
	}

	target := Target{Kind: KindPush, Address: "device-token-1"}
	if err := d.Deliver(context.Background(), target, "Greenhouse alert", "soil moisture 1 is 90.0 (limit 85)"); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	if got.Token != "device-token-1" {
		t.Errorf("token = %q, want %q", got.Token, "device-token-1")
	}
	if got.Title != "Greenhouse alert" {
		t.Errorf("title = %q", got.Title)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q, want bearer token", gotAuth)
	}
}

func TestPushDeliver_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d, err := NewPushDispatcher(testPushConfig(server.URL))
	if err != nil {
		t.Fatalf("NewPushDispatcher() error = %v", err)
	}

	target := Target{Kind: KindPush, Address: "device-token-1"}
	err = d.Deliver(context.Background(), target, "t", "b")
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Errorf("Deliver() error = %v, want ErrDeliveryFailure", err)
	}
}

func TestPushDeliver_GatewayUnreachable(t *testing.T) {
	d, err := NewPushDispatcher(testPushConfig("http://127.0.0.1:0"))
	if err != nil {
		t.Fatalf("NewPushDispatcher() error = %v", err)
	}

	target := Target{Kind: KindPush, Address: "device-token-1"}
	err = d.Deliver(context.Background(), target, "t", "b")
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Errorf("Deliver() error = %v, want ErrDeliveryFailure", err)
	}
}

func TestPushDeliver_WrongKind(t *testing.T) {
	d, err := NewPushDispatcher(testPushConfig("http://localhost:0"))
	if err != nil {
		t.Fatalf("NewPushDispatcher() error = %v", err)
	}

	target := Target{Kind: KindEmail, Address: "grower@example.com"}
	err = d.Deliver(context.Background(), target, "t", "b")
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Deliver() error = %v, want ErrUnknownKind", err)
	}
}
