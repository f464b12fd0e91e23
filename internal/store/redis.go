package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"userdir/internal/domain/user"
)

const redisIDSet = "userdir:ids"

// RedisStore implements Store on Redis: one JSON value per user plus a
// set of known ids. The cached collection is page-bounded and small, so
// the max-id and email scans walk the whole set via MGET.
type RedisStore struct {
	client *redis.Client
	log    *zap.Logger
}

// RedisConfig holds the options for connecting the redis store backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies connectivity with a ping.
func NewRedisStore(cfg RedisConfig, log *zap.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Info("redis store connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return &RedisStore{client: rdb, log: log}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, log *zap.Logger) *RedisStore {
	return &RedisStore{client: client, log: log}
}

func redisUserKey(id int64) string {
	return fmt.Sprintf("userdir:user:%d", id)
}

// GetAll returns every cached user.
func (s *RedisStore) GetAll(ctx context.Context) ([]user.User, error) {
	ids, err := s.client.SMembers(ctx, redisIDSet).Result()
	if err != nil {
		s.log.Error("failed to read id set", zap.Error(err))
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	if len(ids) == 0 {
		return []user.User{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt id set entry %q: %w", id, err)
		}
		keys[i] = redisUserKey(n)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		s.log.Error("failed to read users", zap.Error(err))
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	users := make([]user.User, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// id set entry without a value; skip rather than fail the load
			continue
		}
		var u user.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return nil, fmt.Errorf("corrupt cached user: %w", err)
		}
		users = append(users, u)
	}
	return users, nil
}

// Insert upserts a single user by id.
func (s *RedisStore) Insert(ctx context.Context, u user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisUserKey(u.ID), data, 0)
	pipe.SAdd(ctx, redisIDSet, u.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to insert user into store", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// InsertAll upserts a batch of users by id.
func (s *RedisStore) InsertAll(ctx context.Context, users []user.User) error {
	if len(users) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, u := range users {
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}
		pipe.Set(ctx, redisUserKey(u.ID), data, 0)
		pipe.SAdd(ctx, redisIDSet, u.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to insert users into store", zap.Error(err), zap.Int("count", len(users)))
		return fmt.Errorf("failed to insert users: %w", err)
	}
	s.log.Debug("users inserted into store", zap.Int("count", len(users)))
	return nil
}

// Update rewrites an existing user's record. Same write path as Insert.
func (s *RedisStore) Update(ctx context.Context, u user.User) error {
	return s.Insert(ctx, u)
}

// Delete removes the user with u's id.
func (s *RedisStore) Delete(ctx context.Context, u user.User) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisUserKey(u.ID))
	pipe.SRem(ctx, redisIDSet, u.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to delete user from store", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// DeleteAll clears the cache.
func (s *RedisStore) DeleteAll(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, redisIDSet).Result()
	if err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		pipe.Del(ctx, redisUserKey(n))
	}
	pipe.Del(ctx, redisIDSet)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Error("failed to clear store", zap.Error(err))
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// MaxID returns the highest user id in the cache, 0 when empty.
func (s *RedisStore) MaxID(ctx context.Context) (int64, error) {
	ids, err := s.client.SMembers(ctx, redisIDSet).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read max user id: %w", err)
	}

	var maxID int64
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		if n > maxID {
			maxID = n
		}
	}
	return maxID, nil
}

// CountWithEmail counts users holding email, excluding excludingID.
func (s *RedisStore) CountWithEmail(ctx context.Context, email string, excludingID int64) (int64, error) {
	users, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	for _, u := range users {
		if u.Email == email && u.ID != excludingID {
			count++
		}
	}
	return count, nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
