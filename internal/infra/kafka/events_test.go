package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()
	async := newFakeAsyncProducer()
	producer := newProducer(async, "nenemia", zaptest.NewLogger(t))
	t.Cleanup(func() { _ = producer.Close() })

	return NewEventPublisher(producer, config.AppSettings{Name: "nenemia-cuentas", Env: "test"}, zaptest.NewLogger(t)), async
}

func TestPublishUserRegistered(t *testing.T) {
	publisher, async := newTestPublisher(t)

	registeredAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	err := publisher.PublishUserRegistered(context.Background(), domain.UserRegisteredEvent{
		EventID:      "evt-1",
		UserID:       "user-1",
		Email:        "maria@correo.mx",
		Phone:        "5512345678",
		RegisteredAt: registeredAt,
	})
	if err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	msg := <-async.input
	if msg.Topic != "nenemia.user.registered" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}

	raw, err := msg.Value.Encode()
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	var envelope struct {
		EventID   string            `json:"event_id"`
		EventType string            `json:"event_type"`
		UserID    string            `json:"user_id"`
		Version   string            `json:"version"`
		Metadata  map[string]string `json:"metadata"`
		Payload   struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	if envelope.EventID != "evt-1" || envelope.EventType != EventUserRegistered || envelope.UserID != "user-1" {
		t.Fatalf("unexpected envelope header: %+v", envelope)
	}
	if envelope.Version != schemaVersion {
		t.Fatalf("unexpected version %q", envelope.Version)
	}
	if envelope.Payload.Email != "maria@correo.mx" || envelope.Payload.Phone != "5512345678" {
		t.Fatalf("unexpected payload: %+v", envelope.Payload)
	}
	if envelope.Metadata["service"] != "nenemia-cuentas" {
		t.Fatalf("unexpected metadata: %v", envelope.Metadata)
	}
}

func TestPublishUserLoggedInGeneratesEventID(t *testing.T) {
	publisher, async := newTestPublisher(t)

	err := publisher.PublishUserLoggedIn(context.Background(), domain.UserLoggedInEvent{
		UserID:   "user-2",
		IP:       "10.0.0.1",
		Remember: true,
		LoggedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("PublishUserLoggedIn returned error: %v", err)
	}

	msg := <-async.input
	if msg.Topic != "nenemia.user.logged_in" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}
	key, _ := msg.Key.Encode()
	if string(key) != "user-2" {
		t.Fatalf("expected message keyed by user id, got %q", key)
	}

	raw, _ := msg.Value.Encode()
	var envelope struct {
		EventID string `json:"event_id"`
		Payload struct {
			Remember bool `json:"remember"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.EventID == "" {
		t.Fatal("expected generated event id")
	}
	if !envelope.Payload.Remember {
		t.Fatal("expected remember flag in payload")
	}
}

func TestPublishRespectsCancelledContext(t *testing.T) {
	publisher, async := newTestPublisher(t)
	async.input <- &sarama.ProducerMessage{} // fill the buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishUserRegistered(ctx, domain.UserRegisteredEvent{UserID: "user-3"})
	if err == nil {
		t.Fatal("expected context error when producer input is blocked")
	}
}

func TestTopicName(t *testing.T) {
	p := &Producer{prefix: "nenemia"}
	if got := p.TopicName("user.registered"); got != "nenemia.user.registered" {
		t.Fatalf("unexpected topic %q", got)
	}
	if got := p.TopicName("nenemia.user.registered"); got != "nenemia.user.registered" {
		t.Fatalf("prefix applied twice: %q", got)
	}
	if got := (&Producer{}).TopicName("user.logged_in"); got != "user.logged_in" {
		t.Fatalf("unexpected topic without prefix %q", got)
	}
}

func TestStubPublisherMasksPII(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	stub := NewStubPublisher(zap.New(core))

	if err := stub.PublishUserRegistered(context.Background(), domain.UserRegisteredEvent{
		UserID: "user-1",
		Email:  "maria@correo.mx",
		Phone:  "5512345678",
	}); err != nil {
		t.Fatalf("PublishUserRegistered returned error: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "ma***@correo.mx" {
		t.Fatalf("email not masked: %v", fields["email"])
	}
	if fields["phone"] != "******5678" {
		t.Fatalf("phone not masked: %v", fields["phone"])
	}
}
