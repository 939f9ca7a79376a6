package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPrune is the task type for expired session cleanup.
	TaskSessionsPrune = "sessions:prune"
)

// SessionsPrunePayload controls how far past expiry a session row must be
// before it is removed. A zero grace prunes everything already expired.
type SessionsPrunePayload struct {
	Grace time.Duration `json:"grace"`
}

// SessionStore is the persistence surface the prune handler needs.
type SessionStore interface {
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewSessionsPruneTask constructs an Asynq task.
func NewSessionsPruneTask(payload SessionsPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionsPrune, data), nil
}

// NewSessionsPruneHandler returns the handler for TaskSessionsPrune tasks.
func NewSessionsPruneHandler(store SessionStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SessionsPrunePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		cutoff := time.Now().UTC().Add(-payload.Grace)
		pruned, err := store.DeleteExpiredSessions(ctx, cutoff)
		if err != nil {
			logger.Error("prune sessions", slog.Any("error", err))
			return err
		}
		if pruned > 0 {
			logger.Info("pruned sessions", slog.Int64("count", pruned))
		}
		return nil
	}
}
