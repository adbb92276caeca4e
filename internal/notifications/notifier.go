// Package notifications delivers realtime events to websocket clients,
// fanned out across instances through Redis pub/sub.
package notifications

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"

	"murmur/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	broadcastChannel  = "notifications:broadcast"
)

// Notifier publishes event payloads into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Enabled reports whether the notifier has a Redis connection.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishUser sends a payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a payload to every connected user.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if !n.Enabled() {
		return nil
	}
	return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
}

// StartPatternSubscriber subscribes to every user channel and the broadcast
// channel, calling onMessage for each message until ctx is cancelled. It
// returns once the subscription is confirmed.
func (n *Notifier) StartPatternSubscriber(ctx context.Context, onMessage func(channel, payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe notifications: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in notification subscriber",
								"panic", r, "stack", string(debug.Stack()))
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// parseUserChannel extracts the user id from a user channel name.
func parseUserChannel(channel string) (uint, bool) {
	if len(channel) <= len(userChannelPrefix) || channel[:len(userChannelPrefix)] != userChannelPrefix {
		return 0, false
	}
	id, err := strconv.ParseUint(channel[len(userChannelPrefix):], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
