package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevigo/build-warden/internal/core"
)

// ProposeDownstreamHandler syncs an upstream release into every configured
// dist-git branch.
type ProposeDownstreamHandler struct {
	jobHandler
	helper core.SyncHelper
}

func newProposeDownstreamHandler(deps *Deps, p Params) (Handler, error) {
	if err := requireProject(p); err != nil {
		return nil, err
	}
	return &ProposeDownstreamHandler{jobHandler: newJobHandler(deps, p, TaskProposeDownstream)}, nil
}

func (h *ProposeDownstreamHandler) syncHelper() core.SyncHelper {
	if h.helper == nil {
		h.helper = h.deps.Helpers.SyncHelper(h.helperParams(h.params.Event.TriggerRef))
	}
	return h.helper
}

func (h *ProposeDownstreamHandler) branches() []string {
	var configured []string
	if h.params.Job != nil {
		configured = h.params.Job.Metadata.DistGitBranches
	}
	return core.GetBranches(configured, "master")
}

// Run implements Handler. A failing branch never stops the others. A missing
// upstream archive hands the whole unit of work back to the queue while the
// retry budget lasts; the retried execution walks all branches again.
func (h *ProposeDownstreamHandler) Run(ctx context.Context) (*core.TaskResults, error) {
	tag, err := h.releaseTag(ctx)
	if err != nil {
		return nil, err
	}

	errs := map[string]string{}
	for _, branch := range h.branches() {
		err := h.syncBranch(ctx, branch, tag)
		if err == nil {
			continue
		}

		if errors.Is(err, core.ErrArtifactUnavailable) {
			h.logger.Info("we were not able to download the archive", "branch", branch, "tag", tag, "error", err)
			if h.retry(ctx, err) {
				return nil, core.ErrRetryScheduled
			}
		}

		h.deps.Sink.Capture(err, map[string]string{
			"handler": string(TaskProposeDownstream),
			"branch":  branch,
		})
		errs[branch] = err.Error()
	}

	if len(errs) > 0 {
		// The reporter logs its own failures; the result carries the errors either way.
		_ = h.deps.Reporter.PublishSyncFailures(ctx, h.params.Project, tag, errs)
		return &core.TaskResults{Success: false, Msg: "Propose update failed.", Errors: errs}, nil
	}
	return core.NewResults(true, ""), nil
}

func (h *ProposeDownstreamHandler) retry(ctx context.Context, reason error) bool {
	if h.params.Retrier == nil {
		return false
	}
	attempt := h.params.Retrier.Attempt()
	scheduled, err := h.params.Retrier.Retry(ctx, reason)
	if err != nil {
		h.logger.Error("failed to schedule retry", "attempt", attempt, "error", err)
		return false
	}
	if scheduled {
		h.logger.Info("retrying", "attempt", attempt+1)
	}
	return scheduled
}

// syncBranch runs one sync and turns a panicking helper into an error.
func (h *ProposeDownstreamHandler) syncBranch(ctx context.Context, branch, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync of %s panicked: %v", branch, r)
		}
	}()
	return h.syncHelper().SyncRelease(ctx, branch, tag)
}

// releaseTag returns the tag of the release event, or the latest release for
// comment-triggered syncs.
func (h *ProposeDownstreamHandler) releaseTag(ctx context.Context) (string, error) {
	if h.params.Event.TagName != "" {
		return h.params.Event.TagName, nil
	}
	tag, err := h.params.Project.LatestReleaseTag(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find the latest release: %w", err)
	}
	return tag, nil
}
