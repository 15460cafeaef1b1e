package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/bitlane/admin-iam/internal/core/domain"
	"github.com/bitlane/admin-iam/internal/infra/config"
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

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "bitlane",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "admin-iam",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishTokensRotated(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	rotatedAt := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	event := domain.TokensRotatedEvent{
		EventID:        "event-123",
		UserID:         "user-789",
		RotatedTokenID: "token-old",
		IssuedTokenID:  "token-new",
		RotatedAt:      rotatedAt,
	}

	if err := publisher.PublishTokensRotated(context.Background(), event); err != nil {
		t.Fatalf("PublishTokensRotated returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "bitlane.admin.auth.token.rotated" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != TopicTokensRotated {
			t.Fatalf("unexpected event_type: %v", got)
		}
		if got := envelope["event_id"]; got != "event-123" {
			t.Fatalf("unexpected event_id: %v", got)
		}
		if got := envelope["user_id"]; got != "user-789" {
			t.Fatalf("unexpected user_id: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload missing or wrong type: %v", envelope["payload"])
		}
		if got := payload["rotated_token_id"]; got != "token-old" {
			t.Fatalf("unexpected rotated_token_id: %v", got)
		}
		if got := payload["issued_token_id"]; got != "token-new" {
			t.Fatalf("unexpected issued_token_id: %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no message produced")
	}
}

func TestPublishRoleChangedGeneratesEventID(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	event := domain.RoleChangedEvent{
		RoleID:    "role-1",
		RoleName:  "moderator",
		Change:    domain.RoleChangeCreated,
		Languages: []string{"en", "de"},
		ChangedAt: time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
	}

	if err := publisher.PublishRoleChanged(context.Background(), event); err != nil {
		t.Fatalf("PublishRoleChanged returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		id, _ := envelope["event_id"].(string)
		if id == "" {
			t.Fatal("expected generated event_id for blank input")
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload missing or wrong type: %v", envelope["payload"])
		}
		if got := payload["change"]; got != "created" {
			t.Fatalf("unexpected change kind: %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no message produced")
	}
}

func TestPublishRespectsContextCancellation(t *testing.T) {
	// Unbuffered input so the send blocks until the context fires.
	asyncProducer := newFakeAsyncProducer()
	asyncProducer.input = make(chan *sarama.ProducerMessage)
	publisher := newTestPublisher(t, asyncProducer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishUserDeleted(ctx, domain.UserDeletedEvent{
		UserID:    "user-1",
		DeletedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("expected context error when producer input is blocked")
	}
}
