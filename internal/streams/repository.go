package streams

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chaines-io/chat-hub/internal/models"
)

// Repository handles broadcast_sessions persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a broadcast sessions repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create opens a session for a broadcaster identity.
func (r *Repository) Create(ctx context.Context, identity, username string) (*models.BroadcastSession, error) {
	const q = `INSERT INTO broadcast_sessions (identity, username, started_at, peak_listeners)
		VALUES ($1, $2, NOW(), 0)
		RETURNING id, identity, username, started_at, ended_at, peak_listeners`
	var s models.BroadcastSession
	err := r.pool.QueryRow(ctx, q, identity, username).Scan(&s.ID, &s.Identity, &s.Username, &s.StartedAt, &s.EndedAt, &s.PeakListeners)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdatePeakListeners raises peak_listeners when count exceeds it.
func (r *Repository) UpdatePeakListeners(ctx context.Context, sessionID int64, count int) error {
	const q = `UPDATE broadcast_sessions SET peak_listeners = $1 WHERE id = $2 AND $1 > peak_listeners`
	_, err := r.pool.Exec(ctx, q, count, sessionID)
	return err
}

// End sets ended_at for a session.
func (r *Repository) End(ctx context.Context, sessionID int64) error {
	const q = `UPDATE broadcast_sessions SET ended_at = NOW() WHERE id = $1 AND ended_at IS NULL`
	_, err := r.pool.Exec(ctx, q, sessionID)
	return err
}

// CloseDangling ends sessions left open by a previous process.
func (r *Repository) CloseDangling(ctx context.Context) (int64, error) {
	const q = `UPDATE broadcast_sessions SET ended_at = NOW() WHERE ended_at IS NULL`
	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListRecent returns the latest sessions, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]models.BroadcastSession, error) {
	const q = `SELECT id, identity, username, started_at, ended_at, peak_listeners
		FROM broadcast_sessions ORDER BY started_at DESC, id DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]models.BroadcastSession, 0, limit)
	for rows.Next() {
		var s models.BroadcastSession
		if err := rows.Scan(&s.ID, &s.Identity, &s.Username, &s.StartedAt, &s.EndedAt, &s.PeakListeners); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
