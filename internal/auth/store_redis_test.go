// Copyright (c) 2026 Centinela. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centinela/iam/internal/auth"
)

// newCooldownStore spins up an embedded Redis and returns a repository
// bound to it.
func newCooldownStore(t *testing.T) (*auth.RedisCooldownRepository, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return auth.NewCooldownRepository(client), server
}

/*
TestRedisCooldownRepository_Reserve covers window acquisition, denial with a
remaining TTL, and release after expiry.
*/
func TestRedisCooldownRepository_Reserve(t *testing.T) {
	t.Run("first_caller_claims_window", func(t *testing.T) {
		repository, _ := newCooldownStore(t)

		remaining, err := repository.Reserve(context.Background(), "ada@example.com", time.Minute)

		require.NoError(t, err)
		assert.Zero(t, remaining)
	})

	t.Run("second_caller_gets_remaining_wait", func(t *testing.T) {
		repository, _ := newCooldownStore(t)

		_, err := repository.Reserve(context.Background(), "ada@example.com", time.Minute)
		require.NoError(t, err)

		remaining, err := repository.Reserve(context.Background(), "ada@example.com", time.Minute)
		require.NoError(t, err)
		assert.Greater(t, remaining, time.Duration(0))
		assert.LessOrEqual(t, remaining, time.Minute)
	})

	t.Run("windows_are_per_email", func(t *testing.T) {
		repository, _ := newCooldownStore(t)

		_, err := repository.Reserve(context.Background(), "ada@example.com", time.Minute)
		require.NoError(t, err)

		remaining, err := repository.Reserve(context.Background(), "grace@example.com", time.Minute)
		require.NoError(t, err)
		assert.Zero(t, remaining)
	})

	t.Run("window_reopens_after_expiry", func(t *testing.T) {
		repository, server := newCooldownStore(t)

		_, err := repository.Reserve(context.Background(), "ada@example.com", time.Minute)
		require.NoError(t, err)

		// miniredis advances TTLs manually.
		server.FastForward(61 * time.Second)

		remaining, err := repository.Reserve(context.Background(), "ada@example.com", time.Minute)
		require.NoError(t, err)
		assert.Zero(t, remaining)
	})
}
