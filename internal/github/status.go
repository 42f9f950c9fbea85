package github

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/build-warden/internal/core"
)

// statusConcurrency bounds the number of status requests in flight.
const statusConcurrency = 4

// StatusContext names the commit status of one job target, e.g.
// "packit/rpm-build-fedora-rawhide-x86_64".
func StatusContext(kind, target string) string {
	return "packit/" + kind + "-" + target
}

// JobStatusContext names the single commit status of a job without targets,
// e.g. "packit/rpm-build".
func JobStatusContext(kind string) string {
	return "packit/" + kind
}

// StatusReporter posts the same commit status under several contexts, one
// per job target.
type StatusReporter struct {
	project  core.Project
	sha      string
	contexts []string
	logger   *slog.Logger
}

// NewStatusReporter creates a reporter for the commit sha.
func NewStatusReporter(project core.Project, sha string, contexts []string, logger *slog.Logger) *StatusReporter {
	return &StatusReporter{project: project, sha: sha, contexts: contexts, logger: logger}
}

// ReportStatusToAll implements core.StatusReporter. Failures are logged and
// never abort the remaining contexts.
func (r *StatusReporter) ReportStatusToAll(ctx context.Context, description string, state core.CommitState, url string) {
	if r.sha == "" {
		r.logger.Debug("no commit to report status to", "repo", r.project.FullName(), "description", description)
		return
	}

	var g errgroup.Group
	g.SetLimit(statusConcurrency)
	for _, statusContext := range r.contexts {
		g.Go(func() error {
			err := r.project.SetCommitStatus(ctx, r.sha, state, url, description, statusContext)
			if err != nil {
				r.logger.Warn("failed to set commit status",
					"repo", r.project.FullName(),
					"sha", r.sha,
					"context", statusContext,
					"state", state,
					"error", err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
