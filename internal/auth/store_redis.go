// Copyright (c) 2026 Centinela. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/centinela/iam/internal/platform/constants"
)

// RedisCooldownRepository implements CooldownRepository using Redis.
//
// Cooldown keys are pure throttle state with a sub-minute lifetime, so they
// live in Redis instead of the users table.
type RedisCooldownRepository struct {
	client *redis.Client
}

// NewCooldownRepository creates a new Redis-backed CooldownRepository.
func NewCooldownRepository(client *redis.Client) *RedisCooldownRepository {
	return &RedisCooldownRepository{client: client}
}

/*
Reserve attempts to claim the cooldown window for an email address.

Description: Uses SET NX so exactly one concurrent caller wins the window.
Losers receive the remaining TTL so the handler can emit a precise
Retry-After value.

Parameters:
  - context: context.Context
  - email: string
  - window: time.Duration

Returns:
  - time.Duration: Zero if claimed, otherwise the remaining wait
  - error: Connectivity failures
*/
func (repository *RedisCooldownRepository) Reserve(context context.Context, email string, window time.Duration) (time.Duration, error) {
	key := constants.RedisPrefixResendCooldown + email

	acquired, err := repository.client.SetNX(context, key, "1", window).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_cooldown_reserve_failed: %w", err)
	}
	if acquired {
		return 0, nil
	}

	remaining, err := repository.client.TTL(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_cooldown_ttl_failed: %w", err)
	}

	// TTL can report -1/-2 for keys without expiry or racing deletion.
	// Fall back to the full window rather than letting the caller through.
	if remaining <= 0 {
		remaining = window
	}

	return remaining, nil
}
