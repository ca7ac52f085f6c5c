package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/hotel-room-service/internal/model"
)

// SubscriptionLister returns the active push subscriptions of a room.
type SubscriptionLister interface {
    ListActiveByRoom(ctx context.Context, roomID uint64) ([]model.PushSubscription, error)
}

// Pusher delivers one payload to one browser subscription.
type Pusher interface {
    Push(ctx context.Context, sub model.PushSubscription, payload []byte) error
}

// LogPusher records deliveries in the log instead of calling a push
// service; it is the default when no Web Push transport is configured.
type LogPusher struct{ Logger zerolog.Logger }

func (p LogPusher) Push(_ context.Context, sub model.PushSubscription, payload []byte) error {
    p.Logger.Info().Uint64("subscription_id", sub.ID).Uint64("room_id", sub.RoomID).
        RawJSON("payload", payload).Msg("push delivered")
    return nil
}

// PushPayload is what the service worker on the guest's device receives.
type PushPayload struct {
    Title   string `json:"title"`
    Body    string `json:"body"`
    OrderID uint64 `json:"order_id"`
    Status  string `json:"status"`
}

// Consumer reads OrderEvents, keeps an append-only audit file and fans
// status changes out to the room's push subscriptions.
type Consumer struct {
    url    string
    logDir string
    subs   SubscriptionLister
    pusher Pusher
    logger zerolog.Logger
}

// NewConsumer wires a consumer.  logDir receives orders.log.
func NewConsumer(url, logDir string, subs SubscriptionLister, pusher Pusher, logger zerolog.Logger) *Consumer {
    if logDir == "" {
        logDir = "logs"
    }
    return &Consumer{url: url, logDir: logDir, subs: subs, pusher: pusher,
        logger: logger.With().Str("component", "notify-consumer").Logger()}
}

// Run connects, consumes and reconnects with exponential backoff until ctx
// is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("dial failed")
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

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.logger.Warn().Err(err).Msg("consume loop ended; reconnecting")
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.logger.Warn().Err(err).Msg("set QoS failed")
    }
    if _, err := ch.QueueDeclare(OrdersQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(OrdersQueue, "", false, false, false, false, nil)
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
            if err := c.handleMessage(ctx, d.Body); err != nil {
                c.logger.Error().Err(err).Msg("handle message failed")
                _ = d.Nack(false, false) // drop; redelivery would loop on bad payloads
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
    var ev OrderEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.OrderID == 0 || ev.Type == "" {
        return errors.New("event missing type or order id")
    }
    if err := c.appendAudit(ev); err != nil {
        return err
    }
    if ev.Type != EventOrderStatusChanged || c.subs == nil || c.pusher == nil {
        return nil
    }

    subs, err := c.subs.ListActiveByRoom(ctx, ev.RoomID)
    if err != nil {
        return fmt.Errorf("list subscriptions: %w", err)
    }
    payload, err := json.Marshal(PushPayload{
        Title:   "Room service",
        Body:    fmt.Sprintf("Order #%d is now %s", ev.OrderID, ev.Status),
        OrderID: ev.OrderID,
        Status:  ev.Status,
    })
    if err != nil {
        return err
    }
    for _, s := range subs {
        // One dead endpoint must not block the others.
        if err := c.pusher.Push(ctx, s, payload); err != nil {
            c.logger.Warn().Err(err).Uint64("subscription_id", s.ID).Msg("push failed")
        }
    }
    return nil
}

func (c *Consumer) appendAudit(ev OrderEvent) error {
    if err := os.MkdirAll(c.logDir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(c.logDir, "orders.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] %s | order_id=%d | room=%q | status=%s",
        ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.OrderID, ev.RoomNumber, ev.Status)
    if ev.PrevStatus != "" {
        line += " | from=" + ev.PrevStatus
    }
    if ev.Type == EventOrderCreated {
        line += fmt.Sprintf(" | total=%s | delivery_at=%s", ev.Total, ev.DeliveryAt.UTC().Format(time.RFC3339))
    }
    if _, err := f.WriteString(line + "\n"); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
