package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLayer publishes group sends on redis so that rooms span every
// instance. Membership stays local; each instance delivers what it receives
// to its own members.
type RedisLayer struct {
	rdb    *redis.Client
	prefix string
	reg    *Registry
	sub    *redis.PubSub
	done   chan struct{}
	log    *zap.Logger
}

// NewRedisLayer subscribes to every chat channel under prefix and starts the
// delivery loop.
func NewRedisLayer(ctx context.Context, rdb *redis.Client, prefix string, log *zap.Logger) (*RedisLayer, error) {
	sub := rdb.PSubscribe(ctx, prefix+"chat_*")
	// wait for the subscription to be confirmed so no early send is lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe chat channels: %w", err)
	}

	l := &RedisLayer{
		rdb:    rdb,
		prefix: prefix,
		reg:    NewRegistry(),
		sub:    sub,
		done:   make(chan struct{}),
		log:    log,
	}
	go l.run()
	return l, nil
}

func (l *RedisLayer) channel(group string) string { return l.prefix + group }

func (l *RedisLayer) run() {
	defer close(l.done)
	for msg := range l.sub.Channel() {
		group := strings.TrimPrefix(msg.Channel, l.prefix)
		n := l.reg.Broadcast(group, []byte(msg.Payload))
		l.log.Sugar().Debugw("chat payload relayed", "group", group, "delivered", n)
	}
}

func (l *RedisLayer) GroupAdd(group string, m Member) { l.reg.Add(group, m) }

func (l *RedisLayer) GroupDiscard(group string, m Member) { l.reg.Discard(group, m) }

func (l *RedisLayer) GroupSend(ctx context.Context, group string, payload []byte) error {
	if err := l.rdb.Publish(ctx, l.channel(group), payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", group, err)
	}
	return nil
}

func (l *RedisLayer) Close() error {
	err := l.sub.Close()
	<-l.done
	return err
}
