package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_Acquire(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client, "replica-1")

	t.Run("free lock", func(t *testing.T) {
		mock.ExpectSetNX("lock:boosts:sweep", "replica-1", time.Minute).SetVal(true)

		ok, err := locker.Acquire(context.Background(), "boosts:sweep", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("held lock", func(t *testing.T) {
		mock.ExpectSetNX("lock:boosts:sweep", "replica-1", time.Minute).SetVal(false)

		ok, err := locker.Acquire(context.Background(), "boosts:sweep", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectSetNX("lock:boosts:sweep", "replica-1", time.Minute).SetErr(errors.New("connection refused"))

		_, err := locker.Acquire(context.Background(), "boosts:sweep", time.Minute)
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_Release(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client, "replica-1")

	keys := []string{"lock:boosts:sweep"}

	t.Run("own lock is deleted in one script call", func(t *testing.T) {
		mock.ExpectEvalSha(releaseScript.Hash(), keys, "replica-1").SetVal(int64(1))

		assert.NoError(t, locker.Release(context.Background(), "boosts:sweep"))
	})

	t.Run("foreign or expired lock is left alone", func(t *testing.T) {
		mock.ExpectEvalSha(releaseScript.Hash(), keys, "replica-1").SetVal(int64(0))

		assert.NoError(t, locker.Release(context.Background(), "boosts:sweep"))
	})

	t.Run("script is loaded when the server does not cache it", func(t *testing.T) {
		mock.ExpectEvalSha(releaseScript.Hash(), keys, "replica-1").
			SetErr(errors.New("NOSCRIPT No matching script. Please use EVAL."))
		mock.ExpectEval(releaseSource, keys, "replica-1").SetVal(int64(1))

		assert.NoError(t, locker.Release(context.Background(), "boosts:sweep"))
	})

	t.Run("redis error", func(t *testing.T) {
		mock.ExpectEvalSha(releaseScript.Hash(), keys, "replica-1").SetErr(errors.New("connection refused"))

		assert.Error(t, locker.Release(context.Background(), "boosts:sweep"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRevocationList(t *testing.T) {
	client, mock := redismock.NewClientMock()
	list := NewRedisRevocationList(client)

	mock.ExpectExists("revoked_token:jti-1").SetVal(1)
	mock.ExpectExists("revoked_token:jti-2").SetVal(0)
	mock.ExpectExists("revoked_token:jti-3").SetErr(errors.New("timeout"))

	revoked, err := list.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(context.Background(), "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	_, err = list.IsRevoked(context.Background(), "jti-3")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
