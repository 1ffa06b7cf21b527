package invalidate

import (
	"context"
	"log/slog"

	"github.com/wikimedia/globaluserpage/pkg/queue"
)

// Worker drains one wiki's queue through a Runner. Job failures are
// logged and the job is dropped; redelivery is the queue transport's
// concern, and every job is idempotent anyway.
type Worker struct {
	wiki   string
	queue  *queue.MemoryQueue
	runner *Runner
}

// NewWorker creates a worker for one wiki's in-memory queue.
func NewWorker(wiki string, q *queue.MemoryQueue, runner *Runner) *Worker {
	return &Worker{
		wiki:   wiki,
		queue:  q,
		runner: runner,
	}
}

// Run processes jobs until the context is cancelled or the queue closes.
func (w *Worker) Run(ctx context.Context) error {
	slog.Debug("Worker started", "wiki", w.wiki)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-w.queue.Receive():
			if !ok {
				return nil
			}
			if err := w.runner.Run(ctx, job); err != nil {
				slog.Error("Job failed", "wiki", w.wiki, "kind", job.Kind.String(),
					"username", job.Username, "error", err)
			}
		}
	}
}
