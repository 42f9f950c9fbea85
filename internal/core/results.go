package core

import "sort"

// TaskResults is the single outcome record a handler invocation produces.
type TaskResults struct {
	Success bool              `json:"success"`
	Msg     string            `json:"msg,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`

	JobType   JobType    `json:"job_type,omitempty"`
	Trigger   JobTrigger `json:"trigger,omitempty"`
	EventType EventType  `json:"event_type,omitempty"`
}

// NewResults builds a result carrying only a message.
func NewResults(success bool, msg string) *TaskResults {
	return &TaskResults{Success: success, Msg: msg}
}

// ResultsFor builds a result annotated with the job and event it relates to.
// job may be nil for events that are not driven by package configuration.
func ResultsFor(success bool, msg string, job *JobConfig, event *Event) *TaskResults {
	r := NewResults(success, msg)
	if job != nil {
		r.JobType = job.Type
		r.Trigger = job.Trigger
	}
	if event != nil {
		r.EventType = event.Type
	}
	return r
}

// Details returns the machine-readable details map reported to the runtime.
func (r *TaskResults) Details() map[string]any {
	d := map[string]any{}
	if r.Msg != "" {
		d["msg"] = r.Msg
	}
	if len(r.Errors) > 0 {
		d["errors"] = r.Errors
	}
	return d
}

// FailedTargets returns the names of failed targets in lexicographic order.
func (r *TaskResults) FailedTargets() []string {
	targets := make([]string, 0, len(r.Errors))
	for t := range r.Errors {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
