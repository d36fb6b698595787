package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"
)

const EventsExchange = "storefront.events"

// SequenceSource hands out per-partition sequence numbers for envelopes.
type SequenceSource interface {
	NextSequence(ctx context.Context, partitionKey string) (int64, error)
}

// Publisher pushes storefront notification events to the message fabric that
// drives Telegram delivery. The consumer side is a separate worker process.
type Publisher struct {
	ch       *amqp.Channel
	seq      SequenceSource
	producer string
}

func NewPublisher(conn *amqp.Connection, seq SequenceSource, producer string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	if producer == "" {
		producer = "storefront"
	}
	return &Publisher{ch: ch, seq: seq, producer: producer}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, payload OrderCreatedPayload) error {
	return p.publish(ctx, EventOrderCreated, payload.OrderID, payload)
}

func (p *Publisher) PublishOrderDelivered(ctx context.Context, payload OrderDeliveredPayload) error {
	return p.publish(ctx, EventOrderDelivered, payload.OrderID, payload)
}

func (p *Publisher) PublishOrderBackordered(ctx context.Context, payload OrderBackorderedPayload) error {
	return p.publish(ctx, EventOrderBackordered, payload.OrderID, payload)
}

func (p *Publisher) PublishReferralRewarded(ctx context.Context, payload ReferralRewardedPayload) error {
	return p.publish(ctx, EventReferralRewarded, payload.OrderID, payload)
}

func (p *Publisher) publish(ctx context.Context, eventName, partitionKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventName, err)
	}

	seq, err := p.seq.NextSequence(ctx, partitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := newEnvelope(eventName, partitionKey, seq, p.producer, body)
	envBody, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventName, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		eventName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         envBody,
		},
	)
}

func newEnvelope(eventName, partitionKey string, seq int64, producer string, payload json.RawMessage) EventEnvelope {
	return EventEnvelope{
		EventName:    eventName,
		EventVersion: 1,
		EventID:      uuid.NewString(),
		Producer:     producer,
		PartitionKey: partitionKey,
		Sequence:     seq,
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}
}
