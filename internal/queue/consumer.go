package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// seenSetter is the subset of *redis.Client used for de-duplication.
type seenSetter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Consumer reads booking events from NotificationsQueue and appends one
// line per event to LogPath.  It stands in for the e-mail/SMS gateway:
// downstream delivery tails that file.  Redelivered events are dropped
// when Seen is set.
type Consumer struct {
	URL     string
	LogPath string
	Seen    seenSetter
	SeenTTL time.Duration

	mu sync.Mutex
}

// NewConsumer builds a consumer.  rdb may be nil, in which case every
// delivery is recorded.
func NewConsumer(url, logPath string, rdb *redis.Client) *Consumer {
	c := &Consumer{URL: url, LogPath: logPath, SeenTTL: 24 * time.Hour}
	if rdb != nil {
		c.Seen = rdb
	}
	return c
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes
// until ctx is cancelled.  Broker failures are retried with exponential
// backoff; processing errors are logged and the offending message is
// rejected so the server keeps operating.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			log.Printf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("booking-consumer: set QoS failed: %v", err)
	}

	if _, err = ch.QueueDeclare(NotificationsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(NotificationsQueue, "", false, false, false, false, nil)
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
				log.Printf("booking-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if c.Seen != nil && ev.ID != "" {
		fresh, err := c.Seen.SetNX(ctx, "booking-event:"+ev.ID, 1, c.SeenTTL).Result()
		if err != nil {
			log.Printf("booking-consumer: dedupe lookup failed: %v", err)
		} else if !fresh {
			return nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(ev BookingEvent) string {
	var what string
	switch ev.Type {
	case EventBookingCreated:
		what = "Booking created"
	case EventStatusChanged:
		what = fmt.Sprintf("Status changed %s -> %s", ev.OldStatus, ev.Status)
	case EventReminder:
		what = "Reminder: booking tomorrow"
	default:
		what = ev.Type
	}
	return fmt.Sprintf("[%s] %s | booking=#%s | booking_id=%d | user_id=%d | table_id=%d | start=%s | guests=%d | to=\"%s\" <%s> %s | total=%s | deposit=%s\n",
		ev.OccurredAt, what, ev.BookingNumber, ev.BookingID, ev.UserID, ev.TableID, ev.StartTime, ev.GuestsCount,
		ev.ContactName, ev.ContactEmail, ev.ContactPhone, ev.TotalAmount, ev.DepositAmount)
}
