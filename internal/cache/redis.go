package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisPrefix = "labelingo"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Policy   Policy
}

// RedisStore keeps entries in redis under labelingo:<namespace>:<key> with a TTL of
// MaxAge. Capacity is left to the server's eviction policy.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    logrus.FieldLogger
}

// NewRedisStore connects to redis and checks the connection with a PING.
func NewRedisStore(ctx context.Context, opts RedisOptions, log logrus.FieldLogger) (*RedisStore, error) {
	if opts.Address == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Address, err)
	}
	log.WithField("address", opts.Address).Debug("connected to redis cache")

	return &RedisStore{client: client, ttl: opts.Policy.withDefaults().MaxAge, log: log}, nil
}

func redisKey(namespace, key string) string {
	return redisPrefix + ":" + namespace + ":" + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	if err := validate(namespace, key); err != nil {
		return nil, false, err
	}
	val, err := s.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKey(namespace, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, namespace, key string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
