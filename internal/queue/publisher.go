package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrPublisherClosed is returned for events handed in after Close.
	ErrPublisherClosed = errors.New("publisher closed")
	// ErrPublishBufferFull is returned when events arrive faster than the
	// broker accepts them; the event is dropped.
	ErrPublishBufferFull = errors.New("publish buffer full")
)

// PublisherConfig configures a Publisher. Zero values get defaults.
type PublisherConfig struct {
	URL         string
	Queue       string        // defaults to BookingCreatedQueue
	Buffer      int           // events held while the broker is slow; default 256
	DialTimeout time.Duration // bound on one connection attempt; default 2s
}

// Publisher publishes booking events to a durable RabbitMQ queue.
//
// PublishBookingCreated only enqueues; a single goroutine owns the broker
// connection and does the network work, so request handlers never wait on
// RabbitMQ. The connection is opened on first use and re-opened after a
// failure, and every attempt is bounded by DialTimeout.
type Publisher struct {
	cfg    PublisherConfig
	logger *slog.Logger

	events chan BookingCreatedEvent
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	// owned by run
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher returns a running Publisher. Close must be called to stop it.
func NewPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	p := newPublisher(cfg, logger)
	go p.run()
	return p
}

func newPublisher(cfg PublisherConfig, logger *slog.Logger) *Publisher {
	if cfg.Queue == "" {
		cfg.Queue = BookingCreatedQueue
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		cfg:    cfg,
		logger: logger.With("component", "publisher", "queue", cfg.Queue),
		events: make(chan BookingCreatedEvent, cfg.Buffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// PublishBookingCreated queues ev for delivery and returns immediately.
// Delivery failures are logged by the publisher, not returned here.
func (p *Publisher) PublishBookingCreated(_ context.Context, ev BookingCreatedEvent) error {
	select {
	case <-p.quit:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublishBufferFull
	}
}

// Close stops the publisher. Events still buffered are flushed if the
// broker connection is up and dropped otherwise.
func (p *Publisher) Close() error {
	p.once.Do(func() { close(p.quit) })
	<-p.done
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	defer p.closeConn()
	for {
		select {
		case ev := <-p.events:
			p.deliver(ev)
		case <-p.quit:
			p.flush()
			return
		}
	}
}

func (p *Publisher) flush() {
	for {
		select {
		case ev := <-p.events:
			if p.ch == nil || p.ch.IsClosed() {
				p.logger.Warn("dropping booking event on shutdown", "event_id", ev.EventID, "booking_id", ev.BookingID)
				continue
			}
			p.deliver(ev)
		default:
			return
		}
	}
}

func (p *Publisher) deliver(ev BookingCreatedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*p.cfg.DialTimeout)
	defer cancel()
	if err := p.publish(ctx, ev); err != nil {
		p.logger.Warn("publish booking event failed", "event_id", ev.EventID, "booking_id", ev.BookingID, "error", err)
	}
}

// publish sends ev as a persistent JSON message on the default exchange
// with the queue name as routing key.
func (p *Publisher) publish(ctx context.Context, ev BookingCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, msg); err != nil {
		p.closeConn()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channel returns an open channel, dialing the broker if needed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.closeConn()

	conn, err := amqp.DialConfig(p.cfg.URL, amqp.Config{
		Dial:      amqp.DefaultDial(p.cfg.DialTimeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *Publisher) closeConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
