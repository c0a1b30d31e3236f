package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfluencer-tracker/pkg/common"
	"finfluencer-tracker/pkg/logger"
)

func newTestLocker(t *testing.T) (*redisBatchLocker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	locker := NewRedisBatchLocker(client, 10*time.Minute, logger.NewNop()).(*redisBatchLocker)
	locker.newToken = func() string { return "token-1" }
	return locker, mock
}

func TestRedisBatchLocker_AcquireAndRelease(t *testing.T) {
	locker, mock := newTestLocker(t)

	mock.ExpectSetNX(common.RedisKeyVerificationBatchLock, "token-1", 10*time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{common.RedisKeyVerificationBatchLock}, "token-1").SetVal(int64(1))

	release, err := locker.Acquire(context.Background())
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBatchLocker_AlreadyHeld(t *testing.T) {
	locker, mock := newTestLocker(t)

	mock.ExpectSetNX(common.RedisKeyVerificationBatchLock, "token-1", 10*time.Minute).SetVal(false)

	release, err := locker.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrBatchAlreadyRunning)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBatchLocker_RedisError(t *testing.T) {
	locker, mock := newTestLocker(t)

	mock.ExpectSetNX(common.RedisKeyVerificationBatchLock, "token-1", 10*time.Minute).SetErr(errors.New("connection refused"))

	_, err := locker.Acquire(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBatchAlreadyRunning)
	assert.NoError(t, mock.ExpectationsWereMet())
}
