package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
	"github.com/sevigo/build-warden/internal/util"
)

const (
	backendCopr = "copr"
	buildQueued = "pending"

	msgNoTargets = "No targets configured for the build."
)

// BuildSaver persists submitted builds so build end events can be traced back
// to the entity that triggered them.
type BuildSaver interface {
	SaveBuild(ctx context.Context, build *core.BuildRecord) (int64, error)
}

type coprBuildRequest struct {
	OwnerName   string   `json:"ownername"`
	ProjectName string   `json:"projectname"`
	CloneURL    string   `json:"clone_url"`
	Committish  string   `json:"committish"`
	Chroots     []string `json:"chroots"`
}

type coprBuildResponse struct {
	ID int64 `json:"id"`
}

// CoprBuildHelper submits SRPM builds to Copr for every configured chroot.
type CoprBuildHelper struct {
	*github.StatusReporter
	api     *apiClient
	owner   string
	webURL  string
	builds  BuildSaver
	params  handlers.HelperParams
	targets []string
	logger  *slog.Logger
}

// RunBuild implements core.BuildHelper.
func (h *CoprBuildHelper) RunBuild(ctx context.Context) *core.TaskResults {
	if len(h.targets) == 0 {
		return core.NewResults(false, msgNoTargets)
	}
	event := h.params.Event

	req := coprBuildRequest{
		OwnerName:   h.owner,
		ProjectName: coprProjectName(event),
		CloneURL:    event.RepoCloneURL,
		Committish:  event.HeadSHA,
		Chroots:     h.targets,
	}
	var resp coprBuildResponse
	if err := h.api.post(ctx, "/api_3/build/create/scm", req, &resp); err != nil {
		h.logger.Error("failed to submit copr build", "project", req.ProjectName, "error", err)
		msg := fmt.Sprintf("Submit of the build failed: %v", err)
		h.ReportStatusToAll(ctx, msg, core.StateError, "")
		return core.NewResults(false, msg)
	}

	url := fmt.Sprintf("%s/coprs/build/%d/", h.webURL, resp.ID)
	for _, chroot := range h.targets {
		rec := buildRecord(h.params, backendCopr, strconv.FormatInt(resp.ID, 10), chroot, url)
		if _, err := h.builds.SaveBuild(ctx, rec); err != nil {
			h.logger.Error("failed to save build", "build_id", resp.ID, "chroot", chroot, "error", err)
		}
	}

	h.ReportStatusToAll(ctx, "Starting RPM build...", core.StatePending, url)
	h.logger.Info("copr build submitted", "build_id", resp.ID, "project", req.ProjectName, "chroots", len(h.targets))
	return core.NewResults(true, fmt.Sprintf("Copr build %d submitted.", resp.ID))
}

// coprProjectName derives a per-repository project, with a separate project
// for every pull request.
func coprProjectName(event *core.Event) string {
	if event.PRNumber > 0 && event.JobTrigger() == core.TriggerPullRequest {
		return util.ProjectName(event.RepoFullName, strconv.Itoa(event.PRNumber))
	}
	return util.ProjectName(event.RepoFullName)
}

func buildRecord(p handlers.HelperParams, backend, buildID, chroot, url string) *core.BuildRecord {
	return &core.BuildRecord{
		BuildID:        buildID,
		Backend:        backend,
		Chroot:         chroot,
		Status:         buildQueued,
		WebURL:         url,
		RepoFullName:   p.Event.RepoFullName,
		InstallationID: p.Event.InstallationID,
		Trigger:        p.Trigger.Trigger,
		TriggerKey:     p.Trigger.Key,
		CommitSHA:      p.Event.HeadSHA,
		CreatedAt:      time.Now(),
	}
}
