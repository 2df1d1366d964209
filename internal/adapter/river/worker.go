package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// ChangeHandler reacts to one change notification.
type ChangeHandler func(ctx context.Context, args ChangeJobArgs) error

// ChangeWorker logs every change notification and hands it to the
// configured handler, if any. A handler error makes River retry the job.
type ChangeWorker struct {
	river.WorkerDefaults[ChangeJobArgs]

	logger  *slog.Logger
	handler ChangeHandler
}

func NewChangeWorker(logger *slog.Logger, handler ChangeHandler) *ChangeWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeWorker{logger: logger, handler: handler}
}

// Work processes a single change job.
func (w *ChangeWorker) Work(ctx context.Context, job *river.Job[ChangeJobArgs]) error {
	w.logger.InfoContext(ctx, "processing change",
		"change", job.Args.Change,
		"tenant_id", job.Args.TenantID,
		"tenant_slug", job.Args.Slug,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	if w.handler == nil {
		return nil
	}
	if err := w.handler(ctx, job.Args); err != nil {
		w.logger.WarnContext(ctx, "change handler failed",
			"change", job.Args.Change,
			"job_id", job.ID,
			"error", err,
		)
		return err
	}
	return nil
}
