package backend

import (
	"log/slog"
	"net/http"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
)

// Factory builds backend helpers for handler invocations.
type Factory struct {
	cfg    config.BackendsConfig
	builds BuildSaver
	http   *http.Client
	logger *slog.Logger
}

var _ handlers.HelperFactory = (*Factory)(nil)

// NewFactory creates a Factory. Submitted builds are saved to builds.
func NewFactory(cfg *config.Config, builds BuildSaver, logger *slog.Logger) *Factory {
	return &Factory{
		cfg:    cfg.Backends,
		builds: builds,
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger,
	}
}

// reporter posts one status per target, or a single job level status when the
// job names no targets.
func (f *Factory) reporter(p handlers.HelperParams, kind string, targets []string) *github.StatusReporter {
	contexts := make([]string, 0, len(targets))
	for _, t := range targets {
		contexts = append(contexts, github.StatusContext(kind, t))
	}
	if len(contexts) == 0 {
		contexts = append(contexts, github.JobStatusContext(kind))
	}
	return github.NewStatusReporter(p.Project, p.Event.HeadSHA, contexts, f.logger)
}

func targetsOf(p handlers.HelperParams) []string {
	if p.Job == nil {
		return nil
	}
	return p.Job.Metadata.Targets
}

func branchesOf(p handlers.HelperParams) []string {
	var configured []string
	if p.Job != nil {
		configured = p.Job.Metadata.DistGitBranches
	}
	return core.GetBranches(configured, "master")
}

// CoprBuildHelper implements handlers.HelperFactory.
func (f *Factory) CoprBuildHelper(p handlers.HelperParams) core.BuildHelper {
	targets := targetsOf(p)
	return &CoprBuildHelper{
		StatusReporter: f.reporter(p, "rpm-build", targets),
		api:            newAPIClient(f.cfg.CoprURL, f.cfg.CoprToken, "", f.http),
		owner:          f.cfg.CoprOwner,
		webURL:         f.cfg.CoprURL,
		builds:         f.builds,
		params:         p,
		targets:        targets,
		logger:         f.logger.With("backend", backendCopr, "repo", p.Event.RepoFullName),
	}
}

// KojiBuildHelper implements handlers.HelperFactory.
func (f *Factory) KojiBuildHelper(p handlers.HelperParams) core.BuildHelper {
	targets := targetsOf(p)
	return &KojiBuildHelper{
		StatusReporter: f.reporter(p, "production-build", targets),
		api:            newAPIClient(f.cfg.KojiURL, f.cfg.KojiToken, "", f.http),
		webURL:         f.cfg.KojiURL,
		builds:         f.builds,
		params:         p,
		targets:        targets,
		logger:         f.logger.With("backend", backendKoji, "repo", p.Event.RepoFullName),
	}
}

// TestingFarmHelper implements handlers.HelperFactory.
func (f *Factory) TestingFarmHelper(p handlers.HelperParams) core.TestHelper {
	return &TestingFarmHelper{
		StatusReporter: f.reporter(p, testingFarmKind, targetsOf(p)),
		api:            newAPIClient(f.cfg.TestingFarmURL, "", "", f.http),
		apiKey:         f.cfg.TestingFarmAPIKey,
		project:        p.Project,
		params:         p,
		logger:         f.logger.With("backend", testingFarmKind, "repo", p.Event.RepoFullName),
	}
}

// SyncHelper implements handlers.HelperFactory.
func (f *Factory) SyncHelper(p handlers.HelperParams) core.SyncHelper {
	return &DistGitSync{
		StatusReporter:  f.reporter(p, "propose-downstream", branchesOf(p)),
		distGitURL:      f.cfg.DistGitURL,
		token:           f.cfg.DistGitToken,
		archiveTemplate: f.cfg.ArchiveURLTemplate,
		workDir:         f.cfg.WorkDir,
		http:            f.http,
		params:          p,
		logger:          f.logger.With("backend", "dist-git", "repo", p.Event.RepoFullName),
	}
}
