package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
)

const backendKoji = "koji"

type kojiBuildRequest struct {
	SCMURL  string `json:"scm_url"`
	Target  string `json:"target"`
	Scratch bool   `json:"scratch"`
}

type kojiBuildResponse struct {
	TaskID int64 `json:"task_id"`
}

// KojiBuildHelper submits production builds to Koji, one task per target.
// Everything but releases is built as a scratch build.
type KojiBuildHelper struct {
	*github.StatusReporter
	api     *apiClient
	webURL  string
	builds  BuildSaver
	params  handlers.HelperParams
	targets []string
	logger  *slog.Logger
}

// RunBuild implements core.BuildHelper.
func (h *KojiBuildHelper) RunBuild(ctx context.Context) *core.TaskResults {
	if len(h.targets) == 0 {
		return core.NewResults(false, msgNoTargets)
	}
	event := h.params.Event
	scratch := event.JobTrigger() != core.TriggerRelease

	errs := map[string]string{}
	for _, target := range h.targets {
		req := kojiBuildRequest{
			SCMURL:  fmt.Sprintf("git+%s#%s", event.RepoCloneURL, event.HeadSHA),
			Target:  target,
			Scratch: scratch,
		}
		var resp kojiBuildResponse
		if err := h.api.post(ctx, "/builds", req, &resp); err != nil {
			h.logger.Error("failed to submit koji build", "target", target, "error", err)
			errs[target] = err.Error()
			continue
		}

		url := fmt.Sprintf("%s/koji/taskinfo?taskID=%d", h.webURL, resp.TaskID)
		rec := buildRecord(h.params, backendKoji, strconv.FormatInt(resp.TaskID, 10), target, url)
		if _, err := h.builds.SaveBuild(ctx, rec); err != nil {
			h.logger.Error("failed to save build", "task_id", resp.TaskID, "target", target, "error", err)
		}
		h.logger.Info("koji build submitted", "task_id", resp.TaskID, "target", target, "scratch", scratch)
	}

	if len(errs) > 0 {
		msg := "Submit of the build failed for some targets."
		h.ReportStatusToAll(ctx, msg, core.StateError, "")
		return &core.TaskResults{Success: false, Msg: msg, Errors: errs}
	}
	h.ReportStatusToAll(ctx, "Building RPM ...", core.StatePending, "")
	return core.NewResults(true, "Koji builds submitted.")
}
