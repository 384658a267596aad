// Package events publishes interview lifecycle notifications for other
// services. Publication is best-effort: callers log failures and move on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel interview events are sent on.
const Channel = "prepwise:interview_events"

// Type names an interview lifecycle event.
type Type string

const (
	InterviewStarted        Type = "interview.started"
	InterviewRoundCompleted Type = "interview.round_completed"
	InterviewCompleted      Type = "interview.completed"
	InterviewCancelled      Type = "interview.cancelled"
	InterviewDeleted        Type = "interview.deleted"
)

// Event is the payload published for each transition.
type Event struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Status    string    `json:"status,omitempty"`
	Round     int       `json:"round,omitempty"`
	Progress  int       `json:"progress"`
	At        time.Time `json:"at"`
}

// Publisher sends events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Redis publishes events as JSON on Channel.
type Redis struct {
	rdb     *redis.Client
	channel string
}

// NewRedis returns a publisher backed by an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, channel: Channel}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("events: ping redis %s: %w", addr, err)
	}
	return NewRedis(rdb), nil
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", e.Type, err)
	}
	if err := r.rdb.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("events: publish %s: %w", e.Type, err)
	}
	return nil
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
