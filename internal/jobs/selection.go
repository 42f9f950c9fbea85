package jobs

import (
	"strings"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/handlers"
)

const packitCommandMark = "/packit"

// CommandsFromComment returns the words following the first "/packit" mark
// that carries a command. Later lines are ignored.
func CommandsFromComment(comment string) []string {
	for line := range strings.SplitSeq(strings.TrimSpace(comment), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != packitCommandMark {
			continue
		}
		// Only the command and up to two arguments are meaningful.
		if len(fields) > 4 {
			fields = fields[:4]
		}
		return fields[1:]
	}
	return nil
}

// jobsMatchingTrigger returns the configured jobs whose trigger is satisfied
// by the event, in config order.
func jobsMatchingTrigger(event *core.Event, pkg *core.PackageConfig) []*core.JobConfig {
	trigger := event.JobTrigger()
	if trigger == "" {
		return nil
	}
	return pkg.JobsForTrigger(trigger)
}

// HandlersForEvent returns every registered handler that reacts to event and
// is configured in pkg either directly or as a job required by another one.
// For comment events only the handlers of the commented command qualify.
func HandlersForEvent(reg *handlers.Registry, event *core.Event, pkg *core.PackageConfig) []*handlers.Registration {
	jobs := jobsMatchingTrigger(event, pkg)
	if len(jobs) == 0 {
		return nil
	}

	var command string
	if event.Type.IsComment() {
		commands := CommandsFromComment(event.Comment)
		if len(commands) == 0 {
			return nil
		}
		command = commands[0]
	}

	return reg.Filter(func(r *handlers.Registration) bool {
		if !r.Supports(event.Type) {
			return false
		}
		if event.Type.IsComment() && !r.RunsForComment(command) {
			return false
		}
		for _, job := range jobs {
			if r.ConfiguredFor(job.Type) || r.IsRequiredFor(job.Type) {
				return true
			}
		}
		return false
	})
}

// ConfigsForHandler returns the jobs the handler runs for. Jobs configured
// for the handler win; when there are none, the jobs requiring it are used,
// e.g. a build handler picks up the tests job.
func ConfigsForHandler(r *handlers.Registration, event *core.Event, pkg *core.PackageConfig) []*core.JobConfig {
	jobs := jobsMatchingTrigger(event, pkg)

	var matching []*core.JobConfig
	for _, job := range jobs {
		if r.ConfiguredFor(job.Type) {
			matching = append(matching, job)
		}
	}
	if len(matching) > 0 {
		return matching
	}
	for _, job := range jobs {
		if r.IsRequiredFor(job.Type) {
			matching = append(matching, job)
		}
	}
	return matching
}
