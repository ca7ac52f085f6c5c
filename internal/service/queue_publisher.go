// Package service holds outbound adapters used by the ordering core.  The
// RabbitMQ publisher here delivers order events to the notification feed.
package service

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    q "github.com/iliyamo/hotel-room-service/internal/queue"
)

// Publisher sends OrderEvents to the durable orders queue.  The connection
// is opened lazily and re-dialled after failures; callers treat errors as
// non-fatal because notifications are a side effect of staff actions.
type Publisher struct {
    url    string
    logger zerolog.Logger

    mu   sync.Mutex
    conn *amqp.Connection
}

// NewPublisher does not dial; the first Publish does.
func NewPublisher(url string, logger zerolog.Logger) *Publisher {
    return &Publisher{url: url, logger: logger.With().Str("component", "publisher").Logger()}
}

func (p *Publisher) connection() (*amqp.Connection, error) {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn != nil && !p.conn.IsClosed() {
        return p.conn, nil
    }
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return nil, fmt.Errorf("rabbitmq dial: %w", err)
    }
    p.conn = conn
    return conn, nil
}

// PublishOrderEvent declares the queue (idempotent) and publishes ev as a
// persistent JSON message on the default exchange.
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev q.OrderEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }
    conn, err := p.connection()
    if err != nil {
        p.logger.Warn().Err(err).Msg("publish skipped")
        return err
    }
    ch, err := conn.Channel()
    if err != nil {
        p.logger.Warn().Err(err).Msg("channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(q.OrdersQueue, true, false, false, false, nil); err != nil {
        p.logger.Warn().Err(err).Msg("queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         ev.Type,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.OrdersQueue, false, false, pub); err != nil {
        p.logger.Warn().Err(err).Uint64("order_id", ev.OrderID).Msg("publish failed")
        return err
    }
    p.logger.Debug().Str("type", ev.Type).Uint64("order_id", ev.OrderID).Msg("event published")
    return nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.conn == nil {
        return nil
    }
    err := p.conn.Close()
    p.conn = nil
    return err
}
