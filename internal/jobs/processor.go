package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/handlers"
	"github.com/sevigo/build-warden/internal/queue"
)

const (
	// TaskAccepted is the pending status description posted when a build is queued.
	TaskAccepted = "Task accepted"

	msgJobCreated        = "Job created."
	msgNoConfig          = "No packit config found in the repository."
	msgNotAllowlisted    = "Account is not allowlisted!"
	privateNamespaceHost = "github.com"
)

// ConfigLoader fetches the package configuration of the repository an event
// happened in. It returns config.ErrConfigNotFound when there is none.
type ConfigLoader interface {
	PackageConfig(ctx context.Context, project core.Project, event *core.Event) (*core.PackageConfig, error)
}

// TaskStore persists the state of units of work. Saving a record with an
// existing task ID replaces it.
type TaskStore interface {
	SaveTaskRecord(ctx context.Context, rec *core.TaskRecord) error
}

// Processor turns an event into queued units of work.
type Processor struct {
	cfg      *config.Config
	registry *handlers.Registry
	deps     *handlers.Deps
	configs  ConfigLoader
	queue    queue.Queue
	tasks    TaskStore
	logger   *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(
	cfg *config.Config,
	registry *handlers.Registry,
	deps *handlers.Deps,
	configs ConfigLoader,
	q queue.Queue,
	tasks TaskStore,
	logger *slog.Logger,
) *Processor {
	return &Processor{
		cfg:      cfg,
		registry: registry,
		deps:     deps,
		configs:  configs,
		queue:    q,
		tasks:    tasks,
		logger:   logger,
	}
}

// ProcessMessage is the entrypoint for a normalized event.
func (p *Processor) ProcessMessage(ctx context.Context, event *core.Event) ([]*core.TaskResults, error) {
	if event.Type == core.EventCoprBuildEnd {
		enriched, err := p.withBuildContext(ctx, event)
		if err != nil {
			return nil, err
		}
		event = enriched
	}

	if event.RepoPrivate {
		namespace := privateNamespaceHost + "/" + event.Namespace()
		if !p.cfg.IsPrivateNamespaceEnabled(namespace) {
			p.logger.Info("we do not interact with private repositories by default",
				"namespace", namespace,
				"hint", "add the namespace to enabled_private_namespaces",
			)
			return nil, nil
		}
		p.logger.Debug("working in private namespace enabled via configuration", "namespace", namespace)
	}

	// The app is installed to an account, not a repository, so there is no
	// package config to consult.
	if event.Type == core.EventInstallation {
		if err := p.enqueue(ctx, handlers.TaskInstallation, event, nil, nil); err != nil {
			return nil, err
		}
		return []*core.TaskResults{core.ResultsFor(true, msgJobCreated, nil, event)}, nil
	}

	return p.ProcessJobs(ctx, event)
}

// ProcessJobs queues one unit of work for every eligible (handler, job) pair.
func (p *Processor) ProcessJobs(ctx context.Context, event *core.Event) ([]*core.TaskResults, error) {
	project, err := p.deps.Projects.ProjectForEvent(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project %s: %w", event.RepoFullName, err)
	}

	if event.Type == core.EventPullRequestComment && event.HeadSHA == "" {
		event, err = withPullRequestHead(ctx, project, event)
		if err != nil {
			return nil, err
		}
	}

	pkg, err := p.configs.PackageConfig(ctx, project, event)
	if errors.Is(err, config.ErrConfigNotFound) {
		// Not having a package config is not an error.
		return []*core.TaskResults{core.ResultsFor(true, msgNoConfig, nil, event)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load package config of %s: %w", event.RepoFullName, err)
	}

	regs := HandlersForEvent(p.registry, event, pkg)
	if len(regs) == 0 {
		p.logger.Debug("no handler suitable for the configuration", "event", event.Type, "repo", event.RepoFullName)
		return nil, nil
	}

	approved, err := p.deps.Allowlist.IsApproved(ctx, event.Namespace())
	if err != nil {
		return nil, fmt.Errorf("failed to check allowlist for %s: %w", event.Namespace(), err)
	}
	if !approved {
		p.logger.Info("account is not allowlisted", "namespace", event.Namespace())
		var results []*core.TaskResults
		for _, reg := range regs {
			for _, job := range ConfigsForHandler(reg, event, pkg) {
				results = append(results, core.ResultsFor(false, msgNotAllowlisted, job, event))
			}
		}
		return results, nil
	}

	var results []*core.TaskResults
	for _, reg := range regs {
		for _, job := range ConfigsForHandler(reg, event, pkg) {
			res, err := p.dispatchJob(ctx, reg, project, pkg, job, event)
			if err != nil {
				return results, err
			}
			if res != nil {
				results = append(results, res)
			}
		}
	}
	return results, nil
}

// dispatchJob queues a single handler invocation. A nil result means the
// handler is not eligible for the job.
func (p *Processor) dispatchJob(
	ctx context.Context,
	reg *handlers.Registration,
	project core.Project,
	pkg *core.PackageConfig,
	job *core.JobConfig,
	event *core.Event,
) (*core.TaskResults, error) {
	h, err := reg.New(p.deps, handlers.Params{Package: pkg, Job: job, Event: event, Project: project})
	if err != nil {
		p.logger.Warn("handler cannot run for event", "handler", reg.Name, "event", event.Type, "error", err)
		return nil, nil
	}
	if !h.PreCheck() {
		return nil, nil
	}

	if reporter := p.acceptedReporter(reg.Name, project, pkg, job, event); reporter != nil {
		reporter.ReportStatusToAll(ctx, TaskAccepted, core.StatePending, "")
	}

	if err := p.enqueue(ctx, reg.Name, event, pkg, job); err != nil {
		return nil, err
	}
	return core.ResultsFor(true, msgJobCreated, job, event), nil
}

func (p *Processor) acceptedReporter(
	name handlers.TaskName,
	project core.Project,
	pkg *core.PackageConfig,
	job *core.JobConfig,
	event *core.Event,
) core.StatusReporter {
	params := handlers.HelperParams{Project: project, Package: pkg, Job: job, Event: event, Trigger: event.TriggerRef}
	switch name {
	case handlers.TaskCoprBuild:
		return p.deps.Helpers.CoprBuildHelper(params)
	case handlers.TaskKojiBuild:
		return p.deps.Helpers.KojiBuildHelper(params)
	default:
		return nil
	}
}

func (p *Processor) enqueue(
	ctx context.Context,
	name handlers.TaskName,
	event *core.Event,
	pkg *core.PackageConfig,
	job *core.JobConfig,
) error {
	task := queue.NewTask(string(name), event, pkg, job)
	rec := &core.TaskRecord{
		TaskID:    task.ID,
		TaskName:  task.Name,
		State:     core.TaskPending,
		UpdatedAt: time.Now(),
	}
	if err := p.tasks.SaveTaskRecord(ctx, rec); err != nil {
		p.logger.Warn("failed to record pending task", "task", task.Name, "task_id", task.ID, "error", err)
	}
	if err := p.queue.Enqueue(ctx, task, 0); err != nil {
		return fmt.Errorf("failed to queue %s: %w", name, err)
	}
	p.logger.Info("task queued", "task", task.Name, "task_id", task.ID, "repo", event.RepoFullName)
	return nil
}

// withBuildContext fills in the repository and trigger of a build end event
// from the stored build record.
func (p *Processor) withBuildContext(ctx context.Context, event *core.Event) (*core.Event, error) {
	build, err := p.deps.Builds.GetBuildByID(ctx, event.BuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load build %d: %w", event.BuildID, err)
	}
	enriched := *event
	if enriched.RepoFullName == "" {
		enriched.RepoFullName = build.RepoFullName
		enriched.RepoOwner, enriched.RepoName = splitFullName(build.RepoFullName)
	}
	if enriched.InstallationID == 0 {
		enriched.InstallationID = build.InstallationID
	}
	if enriched.HeadSHA == "" {
		enriched.HeadSHA = build.CommitSHA
	}
	if enriched.TriggerRef.IsZero() {
		enriched.TriggerRef = build.TriggerRef()
	}
	return &enriched, nil
}

// withPullRequestHead fills in the head commit of the pull request a comment
// was posted on; the comment payload does not carry it.
func withPullRequestHead(ctx context.Context, project core.Project, event *core.Event) (*core.Event, error) {
	sha, err := project.PullRequestHeadSHA(ctx, event.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve head of %s#%d: %w", event.RepoFullName, event.PRNumber, err)
	}
	enriched := *event
	enriched.HeadSHA = sha
	return &enriched, nil
}

func splitFullName(fullName string) (string, string) {
	owner, name, _ := strings.Cut(fullName, "/")
	return owner, name
}
