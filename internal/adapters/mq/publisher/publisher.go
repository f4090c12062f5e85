// Package publisher announces finished optimization runs on a message broker.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/joshmont53/SwimTeamOptimizer/pkg/logger"
	"github.com/joshmont53/SwimTeamOptimizer/pkg/metrics"
)

// RunCompleted is the message body published when a run finishes.
type RunCompleted struct {
	RunID            string    `json:"runId"`
	RequestID        string    `json:"requestId,omitempty"`
	Status           string    `json:"status"`
	CompetitionType  string    `json:"competitionType"`
	FinishedAt       time.Time `json:"finishedAt"`
	DurationMS       int64     `json:"durationMs"`
	FilledSlots      int       `json:"filledSlots"`
	UnfilledSlots    int       `json:"unfilledSlots"`
	IncompleteRelays int       `json:"incompleteRelays"`
	Warnings         int       `json:"warnings"`
	Error            string    `json:"error,omitempty"`
}

// Publisher sends run notifications.
type Publisher interface {
	PublishRunCompleted(ctx context.Context, ev RunCompleted) error
	Close() error
}

// Nop discards every message. It is used when no broker is configured.
type Nop struct{}

// PublishRunCompleted implements Publisher.
func (Nop) PublishRunCompleted(context.Context, RunCompleted) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// AMQPPublisher publishes persistent JSON messages to a durable queue on
// the default exchange.
type AMQPPublisher struct {
	queue string
	log   logger.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		return nil, fmt.Errorf("%w: empty queue name", ErrInvalidConfig)
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %w", ErrUnavailable, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: channel open: %w", ErrUnavailable, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: queue declare: %w", ErrUnavailable, err)
	}
	return &AMQPPublisher{
		queue: queue,
		log:   logger.GetOrNop().Named("publisher"),
		conn:  conn,
		ch:    ch,
	}, nil
}

// PublishRunCompleted implements Publisher.
func (p *AMQPPublisher) PublishRunCompleted(ctx context.Context, ev RunCompleted) error { //nolint:gocritic // hugeParam
	body, err := json.Marshal(ev)
	if err != nil {
		metrics.RecordPublish("failed")
		return fmt.Errorf("encode run event %s: %w", ev.RunID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		metrics.RecordPublish("failed")
		return ErrClosed
	}
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.RunID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		metrics.RecordPublish("failed")
		p.log.Warn(ctx, "publish failed", logger.String("run_id", ev.RunID), logger.Error(err))
		return fmt.Errorf("publish run event %s: %w", ev.RunID, err)
	}
	metrics.RecordPublish("published")
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	_ = p.ch.Close()
	err := p.conn.Close()
	p.ch, p.conn = nil, nil
	return err
}

// New returns an AMQPPublisher when url is set and Nop otherwise.
func New(url, queue string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	return NewAMQPPublisher(url, queue)
}
