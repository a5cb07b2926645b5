package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/112Alex/authgate/internal/jobs"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TokenPurgeJob removes refresh token records whose expiry has passed.
// Expired tokens are already rejected by timestamp comparison at verify
// time; this job only reclaims storage, so the blacklist semantics do
// not depend on it running.
type TokenPurgeJob struct {
	db      execer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewTokenPurgeJob initialises the purge handler.
func NewTokenPurgeJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *TokenPurgeJob {
	j := &TokenPurgeJob{
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	if pool != nil {
		j.db = pool
	}
	return j
}

// Handle executes the purge. Blacklist rows cascade with their
// outstanding token rows.
func (j *TokenPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.db == nil {
		return errors.New("token purge: handler not configured")
	}
	var payload TokenPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTokenPurge)
	deleted, err := j.purge(ctx, payload)
	if err = tracker.End(err); err != nil {
		j.logger().Error("token purge failed", slog.Any("error", err))
		return err
	}

	j.logger().Info("token purge complete", slog.Int64("deleted", deleted))
	return nil
}

func (j *TokenPurgeJob) purge(ctx context.Context, payload TokenPurgePayload) (int64, error) {
	now := j.clock()
	if payload.BatchSize > 0 {
		res, err := j.db.Exec(ctx, `
			DELETE FROM outstanding_tokens
			WHERE jti IN (
				SELECT jti FROM outstanding_tokens
				WHERE expires_at < $1
				LIMIT $2
			)`, now, payload.BatchSize)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected(), nil
	}
	res, err := j.db.Exec(ctx, `DELETE FROM outstanding_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (j *TokenPurgeJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
