package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/sevigo/build-warden/internal/core"
)

// CoprBuildHandler builds the package in Copr for pull requests, pushes and
// releases. Tests require it, so it also runs for tests jobs unless a build
// job with the same trigger already covers them.
type CoprBuildHandler struct {
	jobHandler
	helper core.BuildHelper
}

func newCoprBuildHandler(deps *Deps, p Params) (Handler, error) {
	if err := requireProject(p); err != nil {
		return nil, err
	}
	return &CoprBuildHandler{jobHandler: newJobHandler(deps, p, TaskCoprBuild)}, nil
}

func (h *CoprBuildHandler) buildHelper() core.BuildHelper {
	if h.helper == nil {
		h.helper = h.deps.Helpers.CoprBuildHelper(h.helperParams(h.params.Event.TriggerRef))
	}
	return h.helper
}

// Run implements Handler.
func (h *CoprBuildHandler) Run(ctx context.Context) (*core.TaskResults, error) {
	allowed, err := h.actorAllowed(ctx)
	if err != nil {
		h.logger.Error("failed to check actor permissions", "actor", h.params.Event.ActorLogin, "error", err)
		return core.NewResults(false, fmt.Sprintf("failed to check permissions of %s: %v", h.params.Event.ActorLogin, err)), nil
	}
	if !allowed {
		return h.rejectActor(ctx, h.buildHelper(), FAQURLHowToRetrigger), nil
	}
	return h.buildHelper().RunBuild(ctx), nil
}

// PreCheck implements Handler.
func (h *CoprBuildHandler) PreCheck() bool {
	job := h.params.Job
	if job == nil || job.Type != core.JobTypeTests {
		return true
	}
	if h.params.Package.HasJob(func(j *core.JobConfig) bool {
		return j.IsBuild() && j.Trigger == job.Trigger
	}) {
		h.logger.Info("skipping build for testing, the Copr build is defined in the config with the same trigger")
		return false
	}
	return true
}

// KojiBuildHandler runs production builds in Koji.
type KojiBuildHandler struct {
	jobHandler
	helper core.BuildHelper
}

var kojiEvents = []core.EventType{
	core.EventPullRequest,
	core.EventPullRequestComment,
	core.EventPush,
	core.EventRelease,
}

func newKojiBuildHandler(deps *Deps, p Params) (Handler, error) {
	if err := requireProject(p); err != nil {
		return nil, err
	}
	if !slices.Contains(kojiEvents, p.Event.Type) {
		return nil, fmt.Errorf("%w: %s, only pull request, push and release events are accepted",
			ErrUnsupportedEvent, p.Event.Type)
	}
	return &KojiBuildHandler{jobHandler: newJobHandler(deps, p, TaskKojiBuild)}, nil
}

func (h *KojiBuildHandler) buildHelper() core.BuildHelper {
	if h.helper == nil {
		h.helper = h.deps.Helpers.KojiBuildHelper(h.helperParams(h.params.Event.TriggerRef))
	}
	return h.helper
}

// Run implements Handler.
func (h *KojiBuildHandler) Run(ctx context.Context) (*core.TaskResults, error) {
	allowed, err := h.actorAllowed(ctx)
	if err != nil {
		h.logger.Error("failed to check actor permissions", "actor", h.params.Event.ActorLogin, "error", err)
		return core.NewResults(false, fmt.Sprintf("failed to check permissions of %s: %v", h.params.Event.ActorLogin, err)), nil
	}
	if !allowed {
		return h.rejectActor(ctx, h.buildHelper(), ""), nil
	}
	return h.buildHelper().RunBuild(ctx), nil
}

// PreCheck implements Handler. Any Copr build in the config covers tests.
func (h *KojiBuildHandler) PreCheck() bool {
	job := h.params.Job
	if job == nil || job.Type != core.JobTypeTests {
		return true
	}
	if h.params.Package.HasJob((*core.JobConfig).IsBuild) {
		h.logger.Info("skipping build for testing, the Copr build is defined in the config")
		return false
	}
	return true
}
