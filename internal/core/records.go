package core

import (
	"encoding/json"
	"time"
)

// Installation is a stored GitHub App installation.
type Installation struct {
	ID             int64     `db:"id"`
	InstallationID int64     `db:"installation_id"`
	AccountLogin   string    `db:"account_login"`
	AccountType    string    `db:"account_type"`
	SenderLogin    string    `db:"sender_login"`
	CreatedAt      time.Time `db:"created_at"`
}

// BuildRecord is a stored downstream build.
type BuildRecord struct {
	ID             int64      `db:"id"`
	BuildID        string     `db:"build_id"`
	Backend        string     `db:"backend"`
	Chroot         string     `db:"chroot"`
	Status         string     `db:"status"`
	WebURL         string     `db:"web_url"`
	RepoFullName   string     `db:"repo_full_name"`
	InstallationID int64      `db:"installation_id"`
	Trigger        JobTrigger `db:"trigger_type"`
	TriggerKey     string     `db:"trigger_key"`
	CommitSHA      string     `db:"commit_sha"`
	CreatedAt      time.Time  `db:"created_at"`
}

// TriggerRef returns the weak reference to the entity that caused the build.
func (b *BuildRecord) TriggerRef() TriggerRef {
	return TriggerRef{Trigger: b.Trigger, Key: b.TriggerKey}
}

// AllowlistStatus is the approval state of an account.
type AllowlistStatus string

const (
	AllowlistApproved AllowlistStatus = "approved_automatically"
	AllowlistManual   AllowlistStatus = "approved_manually"
	AllowlistWaiting  AllowlistStatus = "waiting"
)

// AllowlistEntry is a stored account approval.
type AllowlistEntry struct {
	Account   string          `db:"account"`
	Status    AllowlistStatus `db:"status"`
	Sender    string          `db:"sender"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Approved reports whether the account may use the service.
func (e *AllowlistEntry) Approved() bool {
	return e.Status == AllowlistApproved || e.Status == AllowlistManual
}

// TaskState is the lifecycle state of a unit of work.
type TaskState string

const (
	TaskPending       TaskState = "pending"
	TaskRunning       TaskState = "running"
	TaskSucceeded     TaskState = "succeeded"
	TaskFailed        TaskState = "failed"
	TaskAwaitingRetry TaskState = "awaiting_retry"
)

// TaskRecord is the stored state and outcome of a unit of work. Retried
// executions overwrite the record of the same task.
type TaskRecord struct {
	TaskID    string          `db:"task_id"`
	TaskName  string          `db:"task_name"`
	State     TaskState       `db:"state"`
	Attempt   int             `db:"attempt"`
	Success   bool            `db:"success"`
	Details   json.RawMessage `db:"details"`
	UpdatedAt time.Time       `db:"updated_at"`
}
