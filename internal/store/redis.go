package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

const (
	// LogStreamKey is the Redis stream collected entries are mirrored to.
	LogStreamKey = "activity:logs"
	// logStreamMaxLen bounds the stream (approximately).
	logStreamMaxLen = 100000
)

// NewRedisClient creates and pings a Redis client with optional password auth.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// LogStream mirrors stored log entries onto a Redis stream so other
// services can follow activity without polling the database.
type LogStream struct {
	rdb    *redis.Client
	stream string
}

func NewLogStream(rdb *redis.Client) *LogStream {
	return &LogStream{rdb: rdb, stream: LogStreamKey}
}

// Publish appends e to the stream.
func (s *LogStream) Publish(ctx context.Context, e models.LogEntry) error {
	err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: logStreamMaxLen,
		Approx: true,
		Values: map[string]any{
			"id":         e.ID,
			"username":   e.Username,
			"action":     e.Action,
			"details":    e.Details,
			"timestamp":  e.Timestamp.UTC().Format(time.RFC3339Nano),
			"ip_address": e.IPAddress,
			"device":     e.Device,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd: %w", err)
	}
	return nil
}
