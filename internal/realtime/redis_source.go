package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "teamsync:members:"

func channelFor(workspaceID uuid.UUID) string {
	return channelPrefix + workspaceID.String()
}

// RedisSource delivers member events over Redis pub/sub, one channel per
// workspace. It implements both the bridge's EventSource and the backend's
// EventSink, so writers publish through the same mechanism readers consume.
type RedisSource struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisSource creates a Redis-backed event source.
func NewRedisSource(rdb *redis.Client, log zerolog.Logger) *RedisSource {
	return &RedisSource{
		rdb: rdb,
		log: log.With().Str("component", "redis_source").Logger(),
	}
}

// Subscribe opens a pub/sub subscription for the workspace's member channel.
// Malformed payloads are logged and skipped, never delivered downstream.
func (s *RedisSource) Subscribe(ctx context.Context, workspaceID uuid.UUID) (<-chan domain.MemberEvent, func(), error) {
	pubsub := s.rdb.Subscribe(ctx, channelFor(workspaceID))

	// Force the subscription onto the wire before returning so callers do
	// not miss events published immediately after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("open pubsub subscription: %w", err)
	}

	out := make(chan domain.MemberEvent, 64)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event domain.MemberEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.log.Warn().Err(err).
					Str("channel", msg.Channel).
					Msg("Dropping undecodable realtime payload")
				continue
			}
			out <- event
		}
	}()

	stop := func() { _ = pubsub.Close() }
	return out, stop, nil
}

// PublishMemberEvent broadcasts a member change to the workspace's channel.
func (s *RedisSource) PublishMemberEvent(ctx context.Context, event domain.MemberEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal member event: %w", err)
	}
	if err := s.rdb.Publish(ctx, channelFor(event.WorkspaceID), payload).Err(); err != nil {
		return fmt.Errorf("publish member event: %w", err)
	}
	return nil
}
