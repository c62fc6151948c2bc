package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"microblog/internal/observability"
	"microblog/internal/telemetry"
)

// Publisher publishes audit envelopes to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// NewPublisher connects to the broker at amqpURL. Audit is best effort for
// both services, so any setup failure yields a publisher that only logs.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		return fallback("empty amqp url")
	}
	conn, ch, err := dial(amqpURL, exchange)
	if err != nil {
		return fallback(err.Error())
	}
	log.Printf("rabbitmq connected exchange=%s", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

func fallback(reason string) Publisher {
	log.Printf("rabbitmq disabled, audit events are logged only: %s", reason)
	return noopPublisher{reason: reason}
}

func dial(amqpURL, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	// durable topic exchange keyed audit.<service>.<action>
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return conn, ch, nil
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	msg, err := message(ctx, event)
	if err != nil {
		return err
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		observability.IncAMQPPublishError()
		log.Printf("rabbitmq publish failed routing_key=%s: %v", routingKey, err)
		return err
	}
	return nil
}

func (p *amqpPublisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}

// message wraps event for the wire. Audit envelopes also fill AppId and Type
// so consumers can route without decoding the body.
func message(ctx context.Context, event any) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode audit event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Headers:      headersTable(observability.HeadersFromContext(ctx)),
		Body:         body,
	}
	if envelope, ok := envelopeOf(event); ok {
		msg.AppId = envelope.Service
		msg.Type = envelope.EventType
		if envelope.UserID != nil {
			msg.Headers["x-user-id"] = *envelope.UserID
		}
	}
	return msg, nil
}

func envelopeOf(event any) (telemetry.AuditEnvelope, bool) {
	switch e := event.(type) {
	case telemetry.AuditEnvelope:
		return e, true
	case *telemetry.AuditEnvelope:
		if e != nil {
			return *e, true
		}
	}
	return telemetry.AuditEnvelope{}, false
}

func headersTable(headers map[string]string) amqp.Table {
	table := amqp.Table{}
	for key, value := range headers {
		table[key] = value
	}
	return table
}

type noopPublisher struct {
	reason string
}

func (noopPublisher) Publish(_ context.Context, routingKey string, event any) error {
	if envelope, ok := envelopeOf(event); ok {
		log.Printf("audit routing_key=%s service=%s action=%s request_id=%s text=%q",
			routingKey, envelope.Service, envelope.Payload.Action, envelope.RequestID, envelope.Payload.Text)
		return nil
	}
	log.Printf("audit routing_key=%s", routingKey)
	return nil
}

func (noopPublisher) Close() error { return nil }

// Describe reports whether p talks to a broker ("amqp"), only logs ("noop")
// or is something else, plus why it fell back.
func Describe(p Publisher) (mode, reason string) {
	switch publisher := p.(type) {
	case *amqpPublisher:
		return "amqp", ""
	case noopPublisher:
		return "noop", publisher.reason
	default:
		return "unknown", ""
	}
}
