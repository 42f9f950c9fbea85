// Package handlers contains the orchestration units that run one configured
// job for one event, and the declarative registry used to select them.
package handlers

import (
	"fmt"
	"slices"

	"github.com/sevigo/build-warden/internal/core"
)

// TaskName identifies a handler variant and the unit of work running it.
type TaskName string

const (
	TaskInstallation      TaskName = "task.run_installation_handler"
	TaskCoprBuild         TaskName = "task.run_copr_build_handler"
	TaskKojiBuild         TaskName = "task.run_koji_build_handler"
	TaskTestingFarm       TaskName = "task.run_testing_farm_handler"
	TaskProposeDownstream TaskName = "task.run_propose_downstream_handler"
)

// Registration declares when a handler variant is eligible to run.
type Registration struct {
	Name TaskName
	// ConfiguredAs lists the job types the handler runs for directly.
	ConfiguredAs []core.JobType
	// RequiredFor lists job types that need this handler to run first,
	// e.g. tests need a build.
	RequiredFor []core.JobType
	// Comments are the /packit commands that trigger the handler.
	Comments []string
	// Events are the event types the handler accepts.
	Events []core.EventType
	New    Constructor
}

// ConfiguredFor reports whether the handler runs for jobs of type t.
func (r *Registration) ConfiguredFor(t core.JobType) bool {
	return slices.Contains(r.ConfiguredAs, t)
}

// IsRequiredFor reports whether jobs of type t depend on the handler.
func (r *Registration) IsRequiredFor(t core.JobType) bool {
	return slices.Contains(r.RequiredFor, t)
}

// RunsForComment reports whether command triggers the handler.
func (r *Registration) RunsForComment(command string) bool {
	return slices.Contains(r.Comments, command)
}

// Supports reports whether the handler accepts events of type t.
func (r *Registration) Supports(t core.EventType) bool {
	return slices.Contains(r.Events, t)
}

// Registry keeps handler registrations in registration order.
type Registry struct {
	regs []*Registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler variant. Names must be unique.
func (r *Registry) Register(reg Registration) *Registry {
	if reg.New == nil {
		panic(fmt.Sprintf("handler %s registered without constructor", reg.Name))
	}
	if _, ok := r.Get(reg.Name); ok {
		panic(fmt.Sprintf("handler %s registered twice", reg.Name))
	}
	r.regs = append(r.regs, &reg)
	return r
}

// Get looks a registration up by task name.
func (r *Registry) Get(name TaskName) (*Registration, bool) {
	for _, reg := range r.regs {
		if reg.Name == name {
			return reg, true
		}
	}
	return nil, false
}

// All returns every registration in registration order.
func (r *Registry) All() []*Registration {
	return slices.Clone(r.regs)
}

// Filter returns the registrations satisfying match, in registration order.
func (r *Registry) Filter(match func(*Registration) bool) []*Registration {
	var out []*Registration
	for _, reg := range r.regs {
		if match(reg) {
			out = append(out, reg)
		}
	}
	return out
}

// DefaultRegistry registers every handler variant the service ships.
func DefaultRegistry() *Registry {
	return NewRegistry().
		Register(Registration{
			Name:         TaskCoprBuild,
			ConfiguredAs: []core.JobType{core.JobTypeCoprBuild, core.JobTypeBuild},
			RequiredFor:  []core.JobType{core.JobTypeTests},
			Comments:     []string{"build", "copr-build"},
			Events:       []core.EventType{core.EventPullRequest, core.EventPush, core.EventRelease, core.EventPullRequestComment},
			New:          newCoprBuildHandler,
		}).
		Register(Registration{
			Name:         TaskKojiBuild,
			ConfiguredAs: []core.JobType{core.JobTypeProductionBuild},
			Comments:     []string{"production-build"},
			Events:       []core.EventType{core.EventPullRequest, core.EventPush, core.EventRelease, core.EventPullRequestComment},
			New:          newKojiBuildHandler,
		}).
		Register(Registration{
			Name:         TaskTestingFarm,
			ConfiguredAs: []core.JobType{core.JobTypeTests},
			Comments:     []string{"test"},
			Events:       []core.EventType{core.EventPullRequestComment, core.EventCoprBuildEnd},
			New:          newTestingFarmHandler,
		}).
		Register(Registration{
			Name:         TaskProposeDownstream,
			ConfiguredAs: []core.JobType{core.JobTypeProposeDownstream},
			Comments:     []string{"propose-downstream", "propose-update"},
			Events:       []core.EventType{core.EventRelease, core.EventIssueComment},
			New:          newProposeDownstreamHandler,
		}).
		Register(Registration{
			Name:   TaskInstallation,
			Events: []core.EventType{core.EventInstallation},
			New:    newInstallationHandler,
		})
}
