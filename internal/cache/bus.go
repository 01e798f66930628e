package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultInvalidationChannel is the Pub/Sub channel invalidations travel on.
const DefaultInvalidationChannel = "catalog:invalidate"

// Invalidator is anything that can drop entries by tag, such as a Store.
type Invalidator interface {
	Invalidate(tags ...Tag) int
}

// invalidationMessage is the wire format on the channel.
type invalidationMessage struct {
	Origin string   `json:"origin"`
	Tags   []string `json:"tags"`
	SentAt int64    `json:"t"` // Unix milliseconds
}

// Bus relays tag invalidations between catalog instances over Redis Pub/Sub.
// Delivery is at-most-once; an instance that misses a message still drops the
// entry when its TTL runs out.
type Bus struct {
	redis   *redis.Client
	channel string
	origin  string
	logger  *slog.Logger

	retryMin time.Duration
	retryMax time.Duration
}

// NewBus creates a Bus. Messages published by this Bus are ignored by its
// own Run loop, since the publisher already invalidated locally.
func NewBus(client *Client, channel string, logger *slog.Logger) *Bus {
	if channel == "" {
		channel = DefaultInvalidationChannel
	}
	return &Bus{
		redis:   client.Redis(),
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger.With("component", "cache.bus", "channel", channel),

		retryMin: 500 * time.Millisecond,
		retryMax: 30 * time.Second,
	}
}

// Publish announces tags to every other instance.
func (b *Bus) Publish(ctx context.Context, tags []Tag) error {
	if len(tags) == 0 {
		return nil
	}
	payload, err := encodeInvalidation(b.origin, tags, time.Now())
	if err != nil {
		return err
	}
	if err := b.redis.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish invalidation: %w", err)
	}
	return nil
}

// Run subscribes to the channel and applies every foreign invalidation to
// targets. A failed or dropped subscription is retried with backoff. It
// blocks until ctx is cancelled.
func (b *Bus) Run(ctx context.Context, targets ...Invalidator) error {
	delay := b.retryMin
	for {
		subscribed, err := b.subscribe(ctx, targets)
		if ctx.Err() != nil {
			b.logger.Info("invalidation bus stopped")
			return nil
		}
		if subscribed {
			delay = b.retryMin
		}
		b.logger.Warn("invalidation bus subscription lost, retrying",
			"error", err,
			"retry_in", delay.String(),
		)

		select {
		case <-ctx.Done():
			b.logger.Info("invalidation bus stopped")
			return nil
		case <-time.After(delay):
		}
		delay = min(delay*2, b.retryMax)
	}
}

// subscribe runs one subscription until it fails or ctx is done. It reports
// whether the subscription was confirmed before it ended.
func (b *Bus) subscribe(ctx context.Context, targets []Invalidator) (bool, error) {
	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reporting ready.
	if _, err := sub.Receive(ctx); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.logger.Info("invalidation bus subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("invalidation channel closed")
			}
			b.handle(msg.Payload, targets)
		}
	}
}

func (b *Bus) handle(payload string, targets []Invalidator) {
	origin, tags, err := decodeInvalidation(payload)
	if err != nil {
		b.logger.Warn("dropping malformed invalidation", "error", err)
		return
	}
	if origin == b.origin {
		return
	}

	total := 0
	for _, t := range targets {
		total += t.Invalidate(tags...)
	}
	b.logger.Debug("applied remote invalidation",
		"origin", origin,
		"tags", tagStrings(tags),
		"entries", total,
	)
}

func encodeInvalidation(origin string, tags []Tag, now time.Time) (string, error) {
	data, err := json.Marshal(invalidationMessage{
		Origin: origin,
		Tags:   tagStrings(tags),
		SentAt: now.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("marshal invalidation: %w", err)
	}
	return string(data), nil
}

func decodeInvalidation(payload string) (string, []Tag, error) {
	var msg invalidationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return "", nil, fmt.Errorf("unmarshal invalidation: %w", err)
	}
	tags := make([]Tag, 0, len(msg.Tags))
	for _, s := range msg.Tags {
		tag, err := ParseTag(s)
		if err != nil {
			return "", nil, err
		}
		tags = append(tags, tag)
	}
	return msg.Origin, tags, nil
}
