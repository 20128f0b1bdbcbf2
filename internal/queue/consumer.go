package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivered image batch. It must be safe to call again
// with the same job: deliveries are at-least-once.
type Handler func(ctx context.Context, job ImageBatchJob) error

// StartImageConsumer connects to RabbitMQ, declares the durable
// images.process queue and consumes batches until the context is cancelled.
// It runs a reconnect loop with capped backoff; handler failures nack the
// message without requeue so a poison batch cannot loop forever.
func StartImageConsumer(ctx context.Context, url string, handler Handler) error {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("image-consumer: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, handler); err != nil {
			log.Printf("image-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}
		_ = conn.Close()
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handler Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("image-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(ImageQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ImageQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			var job ImageBatchJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Printf("image-consumer: unmarshal job failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			if err := handler(ctx, job); err != nil {
				log.Printf("image-consumer: batch %s failed: %v", job.IdempotencyKey, err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
