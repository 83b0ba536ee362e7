package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chaines-io/chat-hub/internal/chat"
	"github.com/chaines-io/chat-hub/pkg/queue"
)

type fakeUploader struct {
	mu      sync.Mutex
	keys    []string
	bodies  [][]byte
	failFor int
}

func (u *fakeUploader) Upload(_ context.Context, bucket, key, contentType string, body io.Reader, _ int64) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failFor > 0 {
		u.failFor--
		return "", errors.New("s3 unavailable")
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	u.bodies = append(u.bodies, b)
	return "https://" + bucket + "/" + key, nil
}

func (u *fakeUploader) ArchiveBucket() string { return "archive" }

func (u *fakeUploader) uploads() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.keys)
}

type fakeQueue struct {
	mu      sync.Mutex
	jobs    []*queue.Job
	retried []int
}

func (q *fakeQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		time.Sleep(time.Millisecond)
		return nil, ctx.Err()
	}
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, nil
}

func (q *fakeQueue) Retry(_ context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempt++
	q.retried = append(q.retried, job.Attempt)
	if job.Attempt < queue.MaxRetries {
		q.jobs = append(q.jobs, job)
	}
	return nil
}

func seededGateway(t *testing.T) *chat.Gateway {
	t.Helper()
	gw := chat.NewGateway(chat.NewMemoryStore(), chat.DefaultLimits, zaptest.NewLogger(t))
	ctx := context.Background()
	_, err := gw.PostMessage(ctx, chat.PostInput{User: "ann", Text: "first"})
	require.NoError(t, err)
	_, err = gw.PostMessage(ctx, chat.PostInput{User: "bob", Text: "second"})
	require.NoError(t, err)
	return gw
}

func TestArchiveProcessor_Process(t *testing.T) {
	up := &fakeUploader{}
	p := NewArchiveProcessor(seededGateway(t), up, &fakeQueue{}, zaptest.NewLogger(t))
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	job, err := queue.NewJob(queue.JobTypeHistoryArchive, queue.ArchivePayload{Reason: "manual"})
	require.NoError(t, err)

	url, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, "https://archive/archives/2024/05/01/"+job.ID+".json", url)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(up.bodies[0], &snap))
	require.Equal(t, job.ID, snap.JobID)
	require.Equal(t, "manual", snap.Reason)
	require.Equal(t, 2, snap.Count)
	require.Equal(t, "first", snap.Messages[0].Text)
}

func TestArchiveProcessor_RejectsUnknownJob(t *testing.T) {
	p := NewArchiveProcessor(seededGateway(t), &fakeUploader{}, &fakeQueue{}, zaptest.NewLogger(t))
	_, err := p.Process(context.Background(), &queue.Job{ID: "x", Type: "email"})
	require.Error(t, err)
}

func TestArchiveProcessor_RunRetriesThenSucceeds(t *testing.T) {
	up := &fakeUploader{failFor: 1}
	job, err := queue.NewJob(queue.JobTypeHistoryArchive, queue.ArchivePayload{Reason: "scheduled"})
	require.NoError(t, err)
	q := &fakeQueue{jobs: []*queue.Job{job}}

	p := NewArchiveProcessor(seededGateway(t), up, q, zaptest.NewLogger(t))
	p.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return up.uploads() == 1 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	q.mu.Lock()
	defer q.mu.Unlock()
	require.Equal(t, []int{1}, q.retried)
}
