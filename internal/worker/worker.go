package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/chaines-io/chat-hub/internal/chat"
	"github.com/chaines-io/chat-hub/pkg/queue"
	"github.com/chaines-io/chat-hub/pkg/storage"
)

// HistorySource loads the full chat history (implemented by *chat.Gateway).
type HistorySource interface {
	History(ctx context.Context) ([]chat.MessageView, error)
}

// Uploader stores archive objects (implemented by *storage.S3).
type Uploader interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64) (string, error)
	ArchiveBucket() string
}

// JobQueue is the subset of *queue.Queue the worker needs.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// Snapshot is the archived document.
type Snapshot struct {
	JobID      string             `json:"job_id"`
	Reason     string             `json:"reason"`
	ArchivedAt time.Time          `json:"archived_at"`
	Count      int                `json:"count"`
	Messages   []chat.MessageView `json:"messages"`
}

// ArchiveProcessor processes history archive jobs: load history, serialise, upload to S3.
type ArchiveProcessor struct {
	history HistorySource
	store   Uploader
	queue   JobQueue
	logger  *zap.Logger
	now     func() time.Time
	backoff time.Duration
}

// NewArchiveProcessor creates a history archive processor.
func NewArchiveProcessor(history HistorySource, store Uploader, q JobQueue, logger *zap.Logger) *ArchiveProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveProcessor{history: history, store: store, queue: q, logger: logger, now: time.Now, backoff: queue.RetryBackoff}
}

// Process executes one archive job and returns the uploaded object's URL.
func (p *ArchiveProcessor) Process(ctx context.Context, job *queue.Job) (string, error) {
	if job.Type != queue.JobTypeHistoryArchive {
		return "", fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ArchivePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	messages, err := p.history.History(ctx)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	now := p.now()
	body, err := json.Marshal(Snapshot{
		JobID:      job.ID,
		Reason:     payload.Reason,
		ArchivedAt: now.UTC(),
		Count:      len(messages),
		Messages:   messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	key := storage.ArchiveKey(now, job.ID)
	url, err := p.store.Upload(ctx, p.store.ArchiveBucket(), key, "application/json", bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	p.logger.Info("history archived", zap.String("job_id", job.ID), zap.String("s3_key", key), zap.Int("messages", len(messages)))
	return url, nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ArchiveProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("archive worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if _, err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ArchiveProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
