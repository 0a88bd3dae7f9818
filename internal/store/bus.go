package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Bus fans document changes out to subscribers.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription is one listener on a bus channel.
type Subscription interface {
	Messages() <-chan []byte
	Close() error
}

// RedisBus publishes over Redis pub/sub so every API instance sees changes.
type RedisBus struct {
	redis *redis.Client
}

func NewRedisBus(redisClient *redis.Client) *RedisBus {
	return &RedisBus{redis: redisClient}
}

func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.redis.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := b.redis.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan []byte, 16),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
}

func (s *redisSubscription) forward() {
	defer close(s.out)
	for msg := range s.pubsub.Channel() {
		s.out <- []byte(msg.Payload)
	}
}

func (s *redisSubscription) Messages() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error { return s.pubsub.Close() }

// LocalBus delivers messages within the process. A subscriber whose buffer
// is full misses the message.
type LocalBus struct {
	mu   sync.RWMutex
	subs map[string]map[*localSubscription]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string]map[*localSubscription]struct{})}
}

func (b *LocalBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[channel] {
		msg := append([]byte(nil), payload...)
		select {
		case sub.out <- msg:
		default:
			// Slow subscriber; it will resync from the next change
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	sub := &localSubscription{
		bus:     b,
		channel: channel,
		out:     make(chan []byte, 16),
	}
	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[*localSubscription]struct{})
	}
	b.subs[channel][sub] = struct{}{}
	b.mu.Unlock()
	return sub, nil
}

type localSubscription struct {
	bus     *LocalBus
	channel string
	out     chan []byte
	once    sync.Once
}

func (s *localSubscription) Messages() <-chan []byte { return s.out }

func (s *localSubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.channel], s)
		if len(s.bus.subs[s.channel]) == 0 {
			delete(s.bus.subs, s.channel)
		}
		s.bus.mu.Unlock()
		close(s.out)
	})
	return nil
}
