// Package hooks is the bridge between the wiki's page lifecycle events
// and the invalidation pipeline. The wiki's dispatch mechanism stays
// outside; it only needs to call HandlePageEvent with a typed event.
package hooks

import (
	"context"

	"github.com/wikimedia/globaluserpage/internal/eligibility"
	"github.com/wikimedia/globaluserpage/internal/invalidate"
	"github.com/wikimedia/globaluserpage/pkg/title"
)

// EventKind classifies page lifecycle events.
type EventKind int

const (
	// EventPageCreated fires when a page gains content for the first time.
	EventPageCreated EventKind = iota

	// EventPageDeleted fires when a page is deleted.
	EventPageDeleted

	// EventLinksUpdated fires after any edit's links update completes.
	EventLinksUpdated
)

// PageEvent is one page lifecycle event.
type PageEvent struct {
	Kind  EventKind
	Title title.Title
}

// Handler reacts to page events on behalf of the extension.
type Handler struct {
	manager     *eligibility.Manager
	invalidator *invalidate.Invalidator
}

// NewHandler creates a Handler.
func NewHandler(manager *eligibility.Manager, invalidator *invalidate.Invalidator) *Handler {
	return &Handler{
		manager:     manager,
		invalidator: invalidator,
	}
}

// HandlePageEvent submits an invalidation when a central root user page
// changes. Creation and deletion flip whether other pages link to this
// one in blue or red, so those also touch backlinks; a plain edit only
// purges content.
func (h *Handler) HandlePageEvent(ctx context.Context, ev PageEvent) error {
	if !h.manager.IsSourcePage(ev.Title) {
		return nil
	}

	username := ev.Title.Text
	switch ev.Kind {
	case EventPageCreated, EventPageDeleted:
		return h.invalidator.Invalidate(ctx, username, invalidate.Options{Links: true})
	case EventLinksUpdated:
		return h.invalidator.Invalidate(ctx, username, invalidate.Options{})
	default:
		return nil
	}
}

// TitleIsAlwaysKnown reports whether a missing title should render as a
// known (blue) link because a global page backs it.
func (h *Handler) TitleIsAlwaysKnown(t title.Title) bool {
	return h.manager.ShouldDisplayGlobalPage(t)
}

// EditNotice returns the message key of the edit notice to show when
// editing t, or "" for none. exists is whether the page exists locally.
func (h *Handler) EditNotice(t title.Title, exists bool) string {
	if !exists && h.manager.ShouldDisplayGlobalPage(t) {
		return "globaluserpage-editnotice"
	}
	if h.manager.IsSourcePage(t) {
		return "globaluserpage-central-editnotice"
	}
	return ""
}
