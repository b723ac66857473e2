package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/streadway/amqp"
)

// Default broker topology.
const (
	DefaultQueue    = "fit_analyses"
	DefaultExchange = "fit_updates"
)

// Config describes the broker connection and pool size.
type Config struct {
	URL      string
	Queue    string
	Exchange string
	Workers  int
	Prefetch int
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Queue == "" {
		c.Queue = DefaultQueue
	}
	if c.Exchange == "" {
		c.Exchange = DefaultExchange
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Prefetch <= 0 {
		c.Prefetch = 1
	}
	return c
}

// Validate checks that the broker can be addressed.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("amqp url is required (set AMQP_URL or --amqp-url)")
	}
	return nil
}

// AMQPPublisher publishes updates to a topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	exchange string
}

// NewAMQPPublisher returns a publisher on conn for exchange.
func NewAMQPPublisher(conn *amqp.Connection, exchange string) *AMQPPublisher {
	return &AMQPPublisher{conn: conn, exchange: exchange}
}

// Publish sends update as JSON with the given routing key. A channel is opened per
// publish so consumer goroutines never share one.
func (p *AMQPPublisher) Publish(_ context.Context, routingKey string, update Update) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return ch.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    update.Timestamp,
			Body:         body,
		},
	)
}

// Pool runs Workers consumer goroutines against one connection.
type Pool struct {
	cfg       Config
	processor *Processor
	logger    *log.Logger
}

// NewPool creates a consumer pool. The processor's Publisher is replaced with an
// AMQP publisher when Run connects unless one is already set.
func NewPool(cfg Config, processor *Processor, logger *log.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if processor == nil || processor.Analyzer == nil {
		return nil, fmt.Errorf("worker pool requires an analyzer")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{cfg: cfg.withDefaults(), processor: processor, logger: logger}, nil
}

// Run declares the topology, starts the consumers and blocks until ctx is cancelled
// or the connection is lost.
func (p *Pool) Run(ctx context.Context) error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	if err := p.declare(conn); err != nil {
		return err
	}
	if p.processor.Publisher == nil {
		p.processor.Publisher = NewAMQPPublisher(conn, p.cfg.Exchange)
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	// in-flight analyses finish after shutdown starts; Processor.Timeout bounds them
	handleCtx := context.WithoutCancel(ctx)

	var (
		wg        sync.WaitGroup
		consumers []*amqp.Channel
	)
	errCh := make(chan error, p.cfg.Workers)
	for i := range p.cfg.Workers {
		ch, deliveries, err := p.subscribe(conn, consumerTag(i+1))
		if err != nil {
			conn.Close()
			wg.Wait()
			return err
		}
		consumers = append(consumers, ch)

		wg.Add(1)
		go func(id int, ch *amqp.Channel) {
			defer wg.Done()
			defer ch.Close()
			p.logger.Printf("[worker] worker=%d started queue=%s", id, p.cfg.Queue)
			if err := p.consume(handleCtx, id, deliveries); err != nil {
				errCh <- err
			}
		}(i+1, ch)
	}

	var runErr error
	select {
	case <-ctx.Done():
		p.logger.Println("[worker] shutting down...")
		for i, ch := range consumers {
			_ = ch.Cancel(consumerTag(i+1), false)
		}
	case amqpErr := <-closed:
		if amqpErr != nil {
			runErr = fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		runErr = errors.Join(runErr, err)
	}
	p.logger.Println("[worker] stopped")
	return runErr
}

func consumerTag(id int) string {
	return fmt.Sprintf("fit-worker-%d", id)
}

// subscribe opens a dedicated channel for one consumer goroutine.
func (p *Pool) subscribe(conn *amqp.Connection, tag string) (*amqp.Channel, <-chan amqp.Delivery, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("error opening channel for %s: %w", tag, err)
	}
	if err := ch.Qos(p.cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("error setting qos: %w", err)
	}
	deliveries, err := ch.Consume(
		p.cfg.Queue,
		tag,
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("error consuming from %s: %w", p.cfg.Queue, err)
	}
	return ch, deliveries, nil
}

func (p *Pool) declare(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(
		p.cfg.Queue,
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

// consume handles deliveries until the channel closes. Malformed messages are rejected
// without requeue; everything else is acknowledged once its outcome is published.
func (p *Pool) consume(ctx context.Context, id int, deliveries <-chan amqp.Delivery) error {
	for d := range deliveries {
		if err := p.processor.Handle(ctx, d.Body); err != nil {
			p.logger.Printf("[worker] worker=%d rejecting message: %v", id, err)
			if nackErr := d.Nack(false, false); nackErr != nil {
				return fmt.Errorf("worker %d: nack failed: %w", id, nackErr)
			}
			continue
		}
		if ackErr := d.Ack(false); ackErr != nil {
			return fmt.Errorf("worker %d: ack failed: %w", id, ackErr)
		}
	}
	return nil
}
