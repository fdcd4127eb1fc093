package ingest

import (
	"errors"
	"testing"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
)

type publishedMessage struct {
	topic   string
	payload string
}

type mockPublishClient struct {
	published []publishedMessage
	err       error
}

func (m *mockPublishClient) PublishJSON(topic string, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, publishedMessage{topic, string(payload)})
	return nil
}

func TestSendCommand(t *testing.T) {
	client := &mockPublishClient{}
	pub := NewPublisher(client, logging.Default())

	if err := pub.SendCommand("gh-001", "light", 1); err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}

	if len(client.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(client.published))
	}
	got := client.published[0]
	if got.topic != "m/gh-001/c/light" {
		t.Errorf("topic = %q, want %q", got.topic, "m/gh-001/c/light")
	}
	if got.payload != "1" {
		t.Errorf("payload = %q, want %q", got.payload, "1")
	}
}

func TestSendCommand_MissingIdentifiers(t *testing.T) {
	pub := NewPublisher(&mockPublishClient{}, logging.Default())

	if err := pub.SendCommand("", "light", 1); !errors.Is(err, ErrMalformedTopic) {
		t.Errorf("empty guid: error = %v, want ErrMalformedTopic", err)
	}
	if err := pub.SendCommand("gh-001", "", 1); !errors.Is(err, ErrMalformedTopic) {
		t.Errorf("empty control: error = %v, want ErrMalformedTopic", err)
	}
}

func TestSendCommand_PublishFailure(t *testing.T) {
	client := &mockPublishClient{err: errors.New("broker down")}
	pub := NewPublisher(client, logging.Default())

	if err := pub.SendCommand("gh-001", "light", 1); err == nil {
		t.Error("SendCommand() should surface the publish failure")
	}
}

func TestSendSettings(t *testing.T) {
	client := &mockPublishClient{}
	pub := NewPublisher(client, logging.Default())

	if err := pub.SendSettings("gh-001", map[int]float64{3: 21.5}); err != nil {
		t.Fatalf("SendSettings() error = %v", err)
	}

	if len(client.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(client.published))
	}
	got := client.published[0]
	if got.topic != "m/gh-001/s/update" {
		t.Errorf("topic = %q, want %q", got.topic, "m/gh-001/s/update")
	}
	if got.payload != `{"3":21.5}` {
		t.Errorf("payload = %q, want %q", got.payload, `{"3":21.5}`)
	}
}

func TestSendSettings_EmptyBatch(t *testing.T) {
	pub := NewPublisher(&mockPublishClient{}, logging.Default())

	if err := pub.SendSettings("gh-001", nil); !errors.Is(err, ErrInvalidPayloadShape) {
		t.Errorf("empty batch: error = %v, want ErrInvalidPayloadShape", err)
	}
}
