// Package queue abstracts the per-wiki job queues the invalidation fan-out
// runs on. Delivery is at-least-once and FIFO-ish; job handlers must be
// idempotent.
package queue

import (
	"context"
	"fmt"
)

// JobKind tags the two stages of the invalidation fan-out.
type JobKind int

const (
	// JobSubmit is the stage-1 job: runs once on the central wiki's own
	// queue and fans out a LocalCacheUpdate job to every participant wiki.
	JobSubmit JobKind = iota

	// LocalCacheUpdate is the stage-2 job: runs on each participant wiki
	// and purges that wiki's caches for one username.
	LocalCacheUpdate
)

// String implements fmt.Stringer.
func (k JobKind) String() string {
	switch k {
	case JobSubmit:
		return "globalUserPageLocalJobSubmitJob"
	case LocalCacheUpdate:
		return "localGlobalUserPageCacheUpdateJob"
	default:
		return fmt.Sprintf("JobKind(%d)", int(k))
	}
}

// Job is an invalidation job payload. Both stages carry the same fields;
// Touch means backlinks must be touched because the page's existence
// changed, not just its content.
type Job struct {
	Kind     JobKind `json:"kind"`
	Username string  `json:"username"`
	Touch    bool    `json:"touch"`
}

// Queue delivers jobs to one wiki's workers.
type Queue interface {
	Push(ctx context.Context, job Job) error
}

// Group hands out the queue belonging to a given wiki.
type Group interface {
	Queue(wiki string) Queue
}
