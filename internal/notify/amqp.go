package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher is the part of *amqp.Channel the queue notifier uses.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Queue publishes events as persistent JSON messages on a RabbitMQ queue.
type Queue struct {
	ch      Publisher
	queue   string
	timeout time.Duration
}

func NewQueue(ch Publisher, queue string, timeout time.Duration) *Queue {
	return &Queue{ch: ch, queue: queue, timeout: timeout}
}

// DeclareQueue makes sure the durable event queue exists.
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		nil,
	)
	return err
}

func (q *Queue) Notify(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Type:         string(event.Type),
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
}

// Decode parses a delivery produced by Queue.
func Decode(d amqp.Delivery) (Event, error) {
	var event Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", d.MessageId, err)
	}
	return event, nil
}

// Consume hands each delivery to next until deliveries closes or ctx is done.
// Undecodable messages are dropped. Delivery failures are requeued once and dropped
// when they fail again.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, next Notifier, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}

			event, err := Decode(d)
			if err != nil {
				logger.WithError(err).Error("Dropping malformed event")
				_ = d.Nack(false, false)
				continue
			}

			entry := logger.WithFields(logrus.Fields{
				"event_id": event.ID,
				"event":    event.Type,
			})
			if err := next.Notify(ctx, event); err != nil {
				entry.WithError(err).WithField("redelivered", d.Redelivered).Warn("Failed to deliver event")
				_ = d.Nack(false, !d.Redelivered)
				continue
			}

			entry.Info("Event delivered")
			_ = d.Ack(false)
		}
	}
}
