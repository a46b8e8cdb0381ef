// Copyright (c) 2026 Passgate. All rights reserved.
// Author: tuan.phan.dn@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tuanphan/passgate/internal/platform/constants"
)

// RedisStateRepository implements StateRepository using Redis.
//
// State nonces are the only volatile data Passgate keeps: they protect the
// federated redirect round trip against CSRF and expire on their own.
type RedisStateRepository struct {
	client *redis.Client
}

// NewStateRepository creates a new Redis-backed StateRepository.
func NewStateRepository(client *redis.Client) *RedisStateRepository {
	return &RedisStateRepository{client: client}
}

/*
Set stores a state nonce with the given TTL.

Parameters:
  - context: context.Context
  - nonce: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisStateRepository) Set(context context.Context, nonce string, ttl time.Duration) error {

	// Use constants for key prefix
	key := constants.RedisPrefixOAuthState + nonce

	// The value carries no information; presence of the key is the proof.
	if err := repository.client.Set(context, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_oauth_state_set_failed: %w", err)
	}

	return nil
}

/*
Consume atomically checks and deletes a state nonce.

Description: GETDEL makes check-and-invalidate a single round trip, so the
same state value can never pass validation twice.

Parameters:
  - context: context.Context
  - nonce: string

Returns:
  - bool: True when the nonce existed
  - error: Connectivity errors
*/
func (repository *RedisStateRepository) Consume(context context.Context, nonce string) (bool, error) {

	// Use constants for key prefix
	key := constants.RedisPrefixOAuthState + nonce

	_, err := repository.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis_oauth_state_consume_failed: %w", err)
	}

	return true, nil
}
