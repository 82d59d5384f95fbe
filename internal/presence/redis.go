package presence

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harshitjain593/workree-chat/internal/events"
)

// Redis key prefixes for presence
const (
	presenceKeyPrefix = "presence:"       // per-user presence record
	presenceOnlineSet = "presence:online" // set of online user IDs
)

// RedisStore tracks presence in Redis so every API instance shares one view.
// Records expire after ttl; a missing record reads as offline.
type RedisStore struct {
	client    *goredis.Client
	publisher events.Publisher
	ttl       time.Duration
}

func NewRedisStore(client *goredis.Client, publisher events.Publisher, ttl time.Duration) *RedisStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, publisher: publisher, ttl: ttl}
}

func (s *RedisStore) SetOnline(ctx context.Context, userID string) error {
	now := time.Now()
	status := Status{UserID: userID, IsOnline: true, LastSeen: now}
	data, _ := json.Marshal(status)

	pipe := s.client.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, data, s.ttl)
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.publishChange(ctx, status)
}

func (s *RedisStore) SetOffline(ctx context.Context, userID string) error {
	now := time.Now()
	status := Status{UserID: userID, IsOnline: false, LastSeen: now}
	data, _ := json.Marshal(status)

	pipe := s.client.Pipeline()
	// Keep the offline record longer so last-seen queries still resolve.
	pipe.Set(ctx, presenceKeyPrefix+userID, data, 24*time.Hour)
	pipe.SRem(ctx, presenceOnlineSet, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.publishChange(ctx, status)
}

func (s *RedisStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return s.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}

func (s *RedisStore) GetPresence(ctx context.Context, userID string) (Status, error) {
	data, err := s.client.Get(ctx, presenceKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return Status{UserID: userID, IsOnline: false}, nil
	}
	if err != nil {
		return Status{}, err
	}
	var status Status
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (s *RedisStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, presenceOnlineSet).Result()
}

func (s *RedisStore) publishChange(ctx context.Context, status Status) error {
	if s.publisher == nil {
		return nil
	}
	envelope, err := events.NewEnvelope(events.EventPresenceChanged, "presence", status.UserID, status)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, envelope)
}
