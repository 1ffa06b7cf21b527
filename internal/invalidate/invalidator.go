// Package invalidate propagates central user page changes to every
// participant wiki through a two-stage job fan-out.
package invalidate

import (
	"context"
	"log/slog"

	"github.com/wikimedia/globaluserpage/pkg/queue"
)

// Options modify what an invalidation covers.
type Options struct {
	// Links means the page's existence changed (creation or deletion),
	// so pages linking to it must be re-rendered for link coloring, not
	// just purged.
	Links bool
}

// Invalidator enqueues the stage-1 fan-out job for a username.
type Invalidator struct {
	group        queue.Group
	localWiki    string
	useCDNCache  bool
	useFileCache bool
}

// NewInvalidator creates an Invalidator submitting to localWiki's own
// queue. The CDN/file-cache flags describe this deployment; with neither
// enabled a plain content purge would change nothing observable.
func NewInvalidator(group queue.Group, localWiki string, useCDNCache, useFileCache bool) *Invalidator {
	return &Invalidator{
		group:        group,
		localWiki:    localWiki,
		useCDNCache:  useCDNCache,
		useFileCache: useFileCache,
	}
}

// Invalidate submits the stage-1 job for username's global user page.
func (inv *Invalidator) Invalidate(ctx context.Context, username string, opts Options) error {
	if !inv.useCDNCache && !inv.useFileCache && !opts.Links {
		// No front-end caches and no link touching: nothing to do.
		return nil
	}

	slog.Debug("Submitting invalidation", "username", username, "touch", opts.Links)

	return inv.group.Queue(inv.localWiki).Push(ctx, queue.Job{
		Kind:     queue.JobSubmit,
		Username: username,
		Touch:    opts.Links,
	})
}
