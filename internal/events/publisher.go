// Package events publishes pipeline stage events to an AMQP exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/jonathan/resume-ats/internal/pipeline"
)

// ExchangeKind is the AMQP exchange type events are published to
const ExchangeKind = "topic"

// DefaultPublishTimeout bounds a single publish
const DefaultPublishTimeout = 5 * time.Second

// channel is the subset of *amqp.Channel used for publishing
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends stage events as persistent JSON messages.
// Publishing is best effort: failures are logged and never reach the pipeline.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	timeout  time.Duration
	logger   *zap.Logger

	mu sync.Mutex
}

// Dial connects to the broker and declares a durable topic exchange
func Dial(url, exchange string, logger *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, fmt.Errorf("events: broker URL is empty")
	}
	if exchange == "" {
		return nil, fmt.Errorf("events: exchange name is empty")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("events: failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		ExchangeKind,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("events: failed to declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		timeout:  DefaultPublishTimeout,
		logger:   logger,
	}
}

// RoutingKey returns "<pipeline>.<stage>.<phase>", e.g. "analysis.calculate_score.finished"
func RoutingKey(ev pipeline.Event) string {
	parts := []string{ev.Pipeline, ev.Stage, string(ev.Phase)}
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, ".", "_")
	}
	return strings.Join(parts, ".")
}

// Publish sends a single event
func (p *Publisher) Publish(ctx context.Context, ev pipeline.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		p.exchange,
		RoutingKey(ev),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			CorrelationId: ev.RunID,
			Type:          string(ev.Phase),
			Timestamp:     time.Now(),
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("events: failed to publish %s: %w", RoutingKey(ev), err)
	}
	return nil
}

// Observer adapts the publisher to a pipeline observer
func (p *Publisher) Observer() pipeline.Observer {
	return func(ev pipeline.Event) {
		if err := p.Publish(context.Background(), ev); err != nil {
			p.logger.Warn("stage event not published", zap.String("routing_key", RoutingKey(ev)), zap.Error(err))
		}
	}
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
