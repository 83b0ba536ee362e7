package queue

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// redisForTest connects to TEST_REDIS_ADDR, or skips. The selected DB is flushed.
func redisForTest(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())
	require.NoError(t, rdb.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNewJob(t *testing.T) {
	job, err := NewJob(JobTypeHistoryArchive, ArchivePayload{Reason: "manual"})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	require.Equal(t, 0, job.Attempt)

	var p ArchivePayload
	require.NoError(t, json.Unmarshal(job.Payload, &p))
	require.Equal(t, "manual", p.Reason)
}

func TestQueue_EnqueueDequeueRetry(t *testing.T) {
	rdb := redisForTest(t)
	q := NewQueue(rdb, zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := q.EnqueueArchive(ctx, "scheduled")
	require.NoError(t, err)

	job, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, id, job.ID)
	require.Equal(t, JobTypeHistoryArchive, job.Type)

	for i := 1; i < MaxRetries; i++ {
		require.NoError(t, q.Retry(ctx, job))
		job, err = q.Dequeue(ctx)
		require.NoError(t, err)
		require.Equal(t, i, job.Attempt)
	}
	require.NoError(t, q.Retry(ctx, job))
	n, err := rdb.LLen(ctx, QueueDLQ).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
	n, err = rdb.LLen(ctx, QueueArchive).Result()
	require.NoError(t, err)
	require.Zero(t, n)
}
