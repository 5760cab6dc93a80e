package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
)

// RedisStore shares session state between server instances.
//
// States are stored as JSON under prefix+key with a sliding TTL. The lock is a
// separate key set with SET NX and a random token; unlocking deletes it only if
// the token still matches, so a lock that expired and was re-taken by another
// instance is never released by the old holder.
type RedisStore struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	lockTTL  time.Duration
	retryGap time.Duration
}

// RedisOptions tunes a RedisStore. Zero values pick the defaults.
type RedisOptions struct {
	Prefix   string        // default "frelance:session:"
	TTL      time.Duration // default 24h
	LockTTL  time.Duration // default 2m, must outlast the slowest search
	RetryGap time.Duration // default 50ms
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisStore(rdb *redis.Client, opts RedisOptions) *RedisStore {
	s := &RedisStore{
		rdb:      rdb,
		prefix:   opts.Prefix,
		ttl:      opts.TTL,
		lockTTL:  opts.LockTTL,
		retryGap: opts.RetryGap,
	}
	if s.prefix == "" {
		s.prefix = "frelance:session:"
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 2 * time.Minute
	}
	if s.retryGap <= 0 {
		s.retryGap = 50 * time.Millisecond
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, key string) (State, bool, error) {
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("session: redis get: %w", err)
	}

	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return State{}, false, fmt.Errorf("session: decoding state: %w", err)
	}
	return st, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, st State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session: encoding state: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

// Lock polls SET NX until it wins or ctx ends.
func (s *RedisStore) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := s.prefix + key + ":lock"
	token := xid.New().String()

	ticker := time.NewTicker(s.retryGap)
	defer ticker.Stop()

	for {
		ok, err := s.rdb.SetNX(ctx, lockKey, token, s.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("session: redis lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrLocked, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// The request context may already be cancelled; release anyway.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, s.rdb, []string{lockKey}, token).Err()
	}, nil
}

// NewRedisClient parses a redis:// URL and checks the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("session: parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session: redis ping: %w", err)
	}
	return rdb, nil
}
