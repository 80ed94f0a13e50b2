package dictionary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding word -> definition.
const DefaultRedisKey = "mdlsp:words"

// Redis is a dictionary stored in a Redis hash.
type Redis struct {
	client *redis.Client
	key    string
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr, key string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	return NewRedis(client, key), nil
}

// NewRedis creates a dictionary over an existing client.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{
		client: client,
		key:    key,
	}
}

// Lookup implements Dictionary.
func (r *Redis) Lookup(ctx context.Context, word string) (Entry, error) {
	normalized := Normalize(word)

	definition, err := r.client.HGet(ctx, r.key, normalized).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("looking up %q: %w", word, err)
	}

	return Entry{Word: normalized, Definition: definition}, nil
}

// Import implements Importer using a single pipeline.
func (r *Redis) Import(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.HSet(ctx, r.key, Normalize(e.Word), e.Definition)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("importing into %s: %w", r.key, err)
	}
	return nil
}

// Close implements Dictionary.
func (r *Redis) Close() error {
	return r.client.Close()
}
