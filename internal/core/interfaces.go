package core

import (
	"context"
	"errors"
)

var (
	// ErrArtifactUnavailable marks the one transient failure class: an upstream
	// artifact (e.g. a release archive) has not been published yet.
	ErrArtifactUnavailable = errors.New("required artifact is not available upstream yet")

	// ErrRetryScheduled is returned by a handler that has handed its unit of
	// work back to the queue. No result is recorded for that execution.
	ErrRetryScheduled = errors.New("retry scheduled")
)

// CommitState is the state of a status annotation on the forge.
type CommitState string

const (
	StatePending CommitState = "pending"
	StateSuccess CommitState = "success"
	StateFailure CommitState = "failure"
	StateError   CommitState = "error"
)

// Project is the forge repository a handler works against.
type Project interface {
	FullName() string
	// CanMergePR reports whether login has write access to the repository.
	CanMergePR(ctx context.Context, login string) (bool, error)
	CreateIssue(ctx context.Context, title, body string) error
	SetCommitStatus(ctx context.Context, sha string, state CommitState, targetURL, description, statusContext string) error
	// LatestReleaseTag returns the tag of the most recent published release.
	LatestReleaseTag(ctx context.Context) (string, error)
	// PullRequestHeadSHA returns the commit the pull request currently points to.
	PullRequestHeadSHA(ctx context.Context, number int) (string, error)
}

// StatusReporter posts a status annotation for every configured target of an
// event. It is best-effort: failures are logged, never returned.
type StatusReporter interface {
	ReportStatusToAll(ctx context.Context, description string, state CommitState, url string)
}

// BuildHelper drives a build backend (Copr or Koji) for one event and job.
type BuildHelper interface {
	StatusReporter
	RunBuild(ctx context.Context) *TaskResults
}

// TestHelper drives the test-execution farm.
type TestHelper interface {
	StatusReporter
	RunTests(ctx context.Context, chroot string) *TaskResults
}

// SyncHelper syncs an upstream release into a downstream dist-git branch.
// A missing upstream archive is reported as ErrArtifactUnavailable.
type SyncHelper interface {
	StatusReporter
	SyncRelease(ctx context.Context, branch, tag string) error
}

// Retrier is the view a handler has of the unit of work it is running in.
type Retrier interface {
	// Attempt is the zero-based number of the current execution.
	Attempt() int
	// Retry schedules a fresh execution of the unit of work. It returns false
	// when the retry budget is exhausted and the failure must be treated as
	// terminal.
	Retry(ctx context.Context, reason error) (bool, error)
}

// ErrorSink receives unexpected errors for tracking.
type ErrorSink interface {
	Capture(err error, tags map[string]string)
}

// Allowlist decides whether accounts may use the service.
type Allowlist interface {
	// AddAccount tries to approve account automatically based on sender and
	// reports whether it is approved.
	AddAccount(ctx context.Context, account, sender string) (bool, error)
	IsApproved(ctx context.Context, account string) (bool, error)
}

// JobDispatcher accepts normalized events from the intake.
type JobDispatcher interface {
	// Dispatch selects and queues the work for event. The returned results
	// describe what was accepted, not the outcome of the work itself.
	Dispatch(ctx context.Context, event *Event) ([]*TaskResults, error)
}
