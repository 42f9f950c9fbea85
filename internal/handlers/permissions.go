package handlers

import (
	"context"

	"github.com/sevigo/build-warden/internal/core"
)

const (
	// PermissionsErrorWriteOrAdmin is reported when a pull request author is
	// not allowed to trigger builds.
	PermissionsErrorWriteOrAdmin = "Only users with write or admin permissions to the repository " +
		"can trigger Packit-as-a-Service"
	// FAQURLHowToRetrigger explains how a privileged user can rerun the job.
	FAQURLHowToRetrigger = "https://packit.dev/docs/faq#how-to-re-trigger-packit-actions-in-your-pull-request"
)

// gatedEvent reports whether the actor of events of type t has to prove
// write access before a build runs.
func gatedEvent(t core.EventType) bool {
	return t == core.EventPullRequest || t == core.EventPullRequestComment
}

// actorAllowed checks whether the event actor may trigger a build: either the
// forge says the actor can merge, or the actor is a configured admin.
func (h *jobHandler) actorAllowed(ctx context.Context) (bool, error) {
	event := h.params.Event
	if !gatedEvent(event.Type) {
		return true, nil
	}
	if h.deps.Config.IsAdmin(event.ActorLogin) {
		return true, nil
	}
	canMerge, err := h.params.Project.CanMergePR(ctx, event.ActorLogin)
	if err != nil {
		return false, err
	}
	return canMerge, nil
}

// rejectActor reports the policy denial on every status target. The result
// is successful: denying an unprivileged actor is not a failure.
func (h *jobHandler) rejectActor(ctx context.Context, reporter core.StatusReporter, url string) *core.TaskResults {
	h.logger.Info("actor is not allowed to trigger builds", "actor", h.params.Event.ActorLogin)
	reporter.ReportStatusToAll(ctx, PermissionsErrorWriteOrAdmin, core.StateFailure, url)
	return core.NewResults(true, PermissionsErrorWriteOrAdmin)
}
