package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"saldo/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	publishTimeout = 5 * time.Second
	maxFailures    = 5
	openTimeout    = 30 * time.Second
)

// ErrCircuitOpen is returned while the broker is considered unavailable.
var ErrCircuitOpen = errors.New("amqp circuit breaker is open")

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events as persistent JSON messages to a durable
// direct exchange. The routing key is the queue name. After maxFailures
// consecutive publish errors it stops trying for openTimeout.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	queue    string

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

// NewAMQPPublisher dials url and declares the exchange, queue and binding.
func NewAMQPPublisher(url, exchange, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declare(ch, exchange, queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange, queue: queue, now: time.Now}, nil
}

func declare(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Publish implements Publisher.
func (p *AMQPPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	if p.circuitOpen() {
		return ErrCircuitOpen
	}

	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		p.queue,    // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.OccurredAt,
			Type:         string(event.Action),
			Body:         body,
		},
	)
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("publish event: %w", err)
	}
	p.recordSuccess()

	logger.Get().Debugw("Published transaction event",
		"action", event.Action,
		"transaction_id", event.TransactionID,
		"exchange", p.exchange,
		"queue", p.queue,
	)
	return nil
}

func (p *AMQPPublisher) circuitOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures < maxFailures {
		return false
	}
	if p.now().Sub(p.lastFailure) >= openTimeout {
		// half-open: let one attempt through
		p.failures = maxFailures - 1
		return false
	}
	return true
}

func (p *AMQPPublisher) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures++
	p.lastFailure = p.now()
}

func (p *AMQPPublisher) recordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = 0
}

// Close releases the channel and connection.
func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
