package invalidate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wikimedia/globaluserpage/pkg/queue"
	"github.com/wikimedia/globaluserpage/pkg/title"
)

// WikiListProvider enumerates the participant wikis the fan-out targets.
// The default provider serves the configured static list; deployments
// with a wiki registry can plug their own.
type WikiListProvider func() []string

// StaticWikiList returns a provider serving a fixed list.
func StaticWikiList(wikis []string) WikiListProvider {
	return func() []string { return wikis }
}

// Purger removes a title's URLs from the front-end/edge cache.
// Implementations must be idempotent: jobs are delivered at least once.
type Purger interface {
	PurgeTitle(ctx context.Context, t title.Title) error
}

// FileCache clears a title's entry from the local HTML file cache.
type FileCache interface {
	Clear(ctx context.Context, t title.Title) error
}

// BacklinkToucher invalidates the rendered form of pages linking to a
// title, so their link coloring gets recomputed.
type BacklinkToucher interface {
	TouchBacklinks(ctx context.Context, t title.Title) error
}

// Runner executes invalidation jobs. One Runner serves one wiki; its
// purger/file cache/toucher act on that wiki's local caches.
type Runner struct {
	group     queue.Group
	wikis     WikiListProvider
	purger    Purger
	fileCache FileCache
	toucher   BacklinkToucher
}

// NewRunner creates a Runner. purger, fileCache and toucher may be nil
// when the deployment lacks the corresponding cache layer.
func NewRunner(group queue.Group, wikis WikiListProvider, purger Purger, fileCache FileCache, toucher BacklinkToucher) *Runner {
	return &Runner{
		group:     group,
		wikis:     wikis,
		purger:    purger,
		fileCache: fileCache,
		toucher:   toucher,
	}
}

// Run executes one job. Stage-2 work is idempotent, so a redelivered job
// only costs wasted purges.
func (r *Runner) Run(ctx context.Context, job queue.Job) error {
	switch job.Kind {
	case queue.JobSubmit:
		return r.runSubmit(ctx, job)
	case queue.LocalCacheUpdate:
		return r.runLocalCacheUpdate(ctx, job)
	default:
		return fmt.Errorf("unknown job kind %d", int(job.Kind))
	}
}

// runSubmit fans the invalidation out: one stage-2 job per participant
// wiki, each carrying the same payload.
func (r *Runner) runSubmit(ctx context.Context, job queue.Job) error {
	local := queue.Job{
		Kind:     queue.LocalCacheUpdate,
		Username: job.Username,
		Touch:    job.Touch,
	}

	for _, wiki := range r.wikis() {
		if err := r.group.Queue(wiki).Push(ctx, local); err != nil {
			return fmt.Errorf("failed to push cache update to %s: %w", wiki, err)
		}
		slog.Debug("Queued local cache update", "wiki", wiki, "username", job.Username)
	}

	return nil
}

// runLocalCacheUpdate purges this wiki's caches for one username. Both
// the user page and its talk page are purged so the subject/talk tabs
// change color together.
func (r *Runner) runLocalCacheUpdate(ctx context.Context, job queue.Job) error {
	userPage := title.NewUserPage(job.Username)
	talkPage := userPage.OtherPage()

	for _, t := range []title.Title{userPage, talkPage} {
		if r.purger != nil {
			if err := r.purger.PurgeTitle(ctx, t); err != nil {
				return fmt.Errorf("failed to purge %s: %w", t.PrefixedText(), err)
			}
		}
		if r.fileCache != nil {
			if err := r.fileCache.Clear(ctx, t); err != nil {
				return fmt.Errorf("failed to clear file cache for %s: %w", t.PrefixedText(), err)
			}
		}
	}

	if job.Touch && r.toucher != nil {
		if err := r.toucher.TouchBacklinks(ctx, userPage); err != nil {
			return fmt.Errorf("failed to touch backlinks of %s: %w", userPage.PrefixedText(), err)
		}
	}

	return nil
}
