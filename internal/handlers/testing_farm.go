package handlers

import (
	"context"
	"fmt"

	"github.com/sevigo/build-warden/internal/core"
)

// TestingFarmHandler runs tests for finished builds. It is triggered by the
// end of a Copr build or by a "/packit test" comment, never directly by
// configuration.
type TestingFarmHandler struct {
	jobHandler
	trigger *core.TriggerRef
}

func newTestingFarmHandler(deps *Deps, p Params) (Handler, error) {
	if err := requireProject(p); err != nil {
		return nil, err
	}
	return &TestingFarmHandler{jobHandler: newJobHandler(deps, p, TaskTestingFarm)}, nil
}

// triggerRef resolves the trigger lazily: a build end event only knows the
// build, so the trigger is read from the stored build record.
func (h *TestingFarmHandler) triggerRef(ctx context.Context) (core.TriggerRef, error) {
	if h.trigger != nil {
		return *h.trigger, nil
	}
	ref := h.params.Event.TriggerRef
	if h.params.Event.BuildID != 0 {
		build, err := h.deps.Builds.GetBuildByID(ctx, h.params.Event.BuildID)
		if err != nil {
			return core.TriggerRef{}, fmt.Errorf("failed to load build %d: %w", h.params.Event.BuildID, err)
		}
		ref = build.TriggerRef()
	}
	h.trigger = &ref
	return ref, nil
}

func (h *TestingFarmHandler) chroots() []string {
	if h.params.Event.Chroot != "" {
		return []string{h.params.Event.Chroot}
	}
	if h.params.Job != nil {
		return h.params.Job.Metadata.Targets
	}
	return nil
}

// Run implements Handler. Every chroot is tested independently.
func (h *TestingFarmHandler) Run(ctx context.Context) (*core.TaskResults, error) {
	ref, err := h.triggerRef(ctx)
	if err != nil {
		return nil, err
	}
	chroots := h.chroots()
	if len(chroots) == 0 {
		return core.NewResults(false, "No chroots configured for testing."), nil
	}

	helper := h.deps.Helpers.TestingFarmHelper(h.helperParams(ref))
	h.logger.Info("running testing farm", "chroots", chroots)

	if len(chroots) == 1 {
		return helper.RunTests(ctx, chroots[0]), nil
	}

	errs := map[string]string{}
	for _, chroot := range chroots {
		res := helper.RunTests(ctx, chroot)
		if res == nil || !res.Success {
			msg := "unknown failure"
			if res != nil && res.Msg != "" {
				msg = res.Msg
			}
			errs[chroot] = msg
		}
	}
	if len(errs) > 0 {
		return &core.TaskResults{Success: false, Msg: "Testing farm failed for some chroots.", Errors: errs}, nil
	}
	return core.NewResults(true, "Testing farm requests submitted."), nil
}
