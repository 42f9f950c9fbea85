package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/report"
)

// ErrUnsupportedEvent is returned by constructors of handlers that only
// accept specific event types.
var ErrUnsupportedEvent = errors.New("unsupported event for handler")

// Handler runs one configured job for one event.
type Handler interface {
	// PreCheck reports whether the handler should run at all. A false result
	// means the job is deferred to another pipeline, not failed.
	PreCheck() bool
	// Run performs the job. It returns core.ErrRetryScheduled when the unit of
	// work was handed back to the queue; any other error is an
	// infrastructure failure of the invocation.
	Run(ctx context.Context) (*core.TaskResults, error)
}

// Constructor builds a handler instance for one invocation.
type Constructor func(deps *Deps, p Params) (Handler, error)

// HelperParams describes what a backend helper works on.
type HelperParams struct {
	Project core.Project
	Package *core.PackageConfig
	Job     *core.JobConfig
	Event   *core.Event
	Trigger core.TriggerRef
}

// HelperFactory builds backend helpers.
type HelperFactory interface {
	CoprBuildHelper(p HelperParams) core.BuildHelper
	KojiBuildHelper(p HelperParams) core.BuildHelper
	TestingFarmHelper(p HelperParams) core.TestHelper
	SyncHelper(p HelperParams) core.SyncHelper
}

// ProjectFactory resolves forge projects.
type ProjectFactory interface {
	// ProjectForEvent returns the repository the event happened in.
	ProjectForEvent(ctx context.Context, event *core.Event) (core.Project, error)
	// ProjectByName returns a repository the service itself has access to.
	ProjectByName(ctx context.Context, fullName string) (core.Project, error)
}

// InstallationStore persists GitHub App installations.
type InstallationStore interface {
	CreateInstallation(ctx context.Context, inst *core.Installation) error
}

// BuildStore reads persisted build records.
type BuildStore interface {
	GetBuildByID(ctx context.Context, id int64) (*core.BuildRecord, error)
}

// Deps are the collaborators shared by every handler instance.
type Deps struct {
	Config        *config.Config
	Projects      ProjectFactory
	Helpers       HelperFactory
	Installations InstallationStore
	Builds        BuildStore
	Allowlist     core.Allowlist
	Reporter      *report.Reporter
	Sink          core.ErrorSink
	Logger        *slog.Logger
}

// Params is the per-invocation input of a handler. Handlers read it and never
// modify the event or job it points to.
type Params struct {
	Package *core.PackageConfig
	Job     *core.JobConfig
	Event   *core.Event
	// Project is the event's repository. It is nil for installation events.
	Project core.Project
	Retrier core.Retrier
}

// jobHandler carries what every handler variant needs.
type jobHandler struct {
	deps   *Deps
	params Params
	logger *slog.Logger
}

func newJobHandler(deps *Deps, p Params, name TaskName) jobHandler {
	logger := deps.Logger.With("handler", string(name))
	if p.Event != nil && p.Event.RepoFullName != "" {
		logger = logger.With("repo", p.Event.RepoFullName)
	}
	return jobHandler{deps: deps, params: p, logger: logger}
}

func (h *jobHandler) helperParams(trigger core.TriggerRef) HelperParams {
	return HelperParams{
		Project: h.params.Project,
		Package: h.params.Package,
		Job:     h.params.Job,
		Event:   h.params.Event,
		Trigger: trigger,
	}
}

// PreCheck implements Handler for variants without preconditions.
func (h *jobHandler) PreCheck() bool {
	return true
}

func requireProject(p Params) error {
	if p.Project == nil {
		return errors.New("handler requires the event project")
	}
	if p.Event == nil {
		return errors.New("handler requires an event")
	}
	return nil
}
