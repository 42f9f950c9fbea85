// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// EventType identifies the normalized kind of an inbound trigger.
type EventType string

const (
	EventPullRequest        EventType = "pull_request"
	EventPush               EventType = "push"
	EventRelease            EventType = "release"
	EventPullRequestComment EventType = "pull_request_comment"
	EventIssueComment       EventType = "issue_comment"
	EventInstallation       EventType = "installation"
	EventCoprBuildEnd       EventType = "copr_build_end"
)

// IsComment reports whether the event carries a comment command.
func (t EventType) IsComment() bool {
	return t == EventPullRequestComment || t == EventIssueComment
}

// TriggerRef is a weak reference to the persisted record of the entity that
// caused an event: a pull request, a branch push or a release.
type TriggerRef struct {
	Trigger JobTrigger `json:"trigger"`
	Key     string     `json:"key"`
}

// IsZero reports whether the reference points at nothing.
func (r TriggerRef) IsZero() bool {
	return r.Trigger == "" && r.Key == ""
}

// Event is the internal, immutable view of a forge webhook event.
type Event struct {
	Type EventType `json:"type"`

	// Repository details
	RepoOwner    string `json:"repo_owner,omitempty"`
	RepoName     string `json:"repo_name,omitempty"`
	RepoFullName string `json:"repo_full_name,omitempty"`
	RepoCloneURL string `json:"repo_clone_url,omitempty"`
	RepoPrivate  bool   `json:"repo_private,omitempty"`

	InstallationID int64  `json:"installation_id,omitempty"`
	ActorLogin     string `json:"actor_login,omitempty"`

	PRNumber int    `json:"pr_number,omitempty"`
	HeadSHA  string `json:"head_sha,omitempty"`
	Ref      string `json:"ref,omitempty"`
	TagName  string `json:"tag_name,omitempty"`
	Comment  string `json:"comment,omitempty"`

	TriggerRef TriggerRef `json:"trigger_ref"`

	// Installation events only.
	AccountType  string `json:"account_type,omitempty"`
	AccountLogin string `json:"account_login,omitempty"`

	// Copr build end events only.
	BuildID int64  `json:"build_id,omitempty"`
	Chroot  string `json:"chroot,omitempty"`
}

// JobTrigger maps the event onto the job trigger it satisfies.
func (e *Event) JobTrigger() JobTrigger {
	if !e.TriggerRef.IsZero() {
		return e.TriggerRef.Trigger
	}
	switch e.Type {
	case EventPullRequest, EventPullRequestComment:
		return TriggerPullRequest
	case EventPush:
		return TriggerCommit
	case EventRelease, EventIssueComment:
		return TriggerRelease
	default:
		return ""
	}
}

// Namespace returns the owner part of the repository.
func (e *Event) Namespace() string {
	return e.RepoOwner
}

type repoFields struct {
	owner, name, fullName, cloneURL string
	private                         bool
}

func (r repoFields) validate() error {
	if r.owner == "" || r.name == "" {
		return fmt.Errorf("repository or owner information is missing from the event")
	}
	return nil
}

func fromRepository(repo *github.Repository) repoFields {
	return repoFields{
		owner:    repo.GetOwner().GetLogin(),
		name:     repo.GetName(),
		fullName: repo.GetFullName(),
		cloneURL: repo.GetCloneURL(),
		private:  repo.GetPrivate(),
	}
}

func (r repoFields) event(t EventType, installationID int64, actor string) *Event {
	return &Event{
		Type:           t,
		RepoOwner:      r.owner,
		RepoName:       r.name,
		RepoFullName:   r.fullName,
		RepoCloneURL:   r.cloneURL,
		RepoPrivate:    r.private,
		InstallationID: installationID,
		ActorLogin:     actor,
	}
}

// EventFromPullRequest transforms a PullRequestEvent into an Event. Only the
// actions that change the head of the pull request are accepted.
func EventFromPullRequest(event *github.PullRequestEvent) (*Event, error) {
	switch event.GetAction() {
	case "opened", "reopened", "synchronize":
	default:
		return nil, fmt.Errorf("pull request action %q is not handled", event.GetAction())
	}

	repo := fromRepository(event.GetRepo())
	if err := repo.validate(); err != nil {
		return nil, err
	}
	pr := event.GetPullRequest()
	if pr.GetNumber() <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", pr.GetNumber())
	}
	if pr.GetHead().GetSHA() == "" {
		return nil, fmt.Errorf("pull request %d has no head SHA", pr.GetNumber())
	}

	e := repo.event(EventPullRequest, event.GetInstallation().GetID(), pr.GetUser().GetLogin())
	e.PRNumber = pr.GetNumber()
	e.HeadSHA = pr.GetHead().GetSHA()
	e.Ref = pr.GetBase().GetRef()
	e.TriggerRef = TriggerRef{Trigger: TriggerPullRequest, Key: fmt.Sprintf("%s#%d", repo.fullName, pr.GetNumber())}
	return e, nil
}

// EventFromPush transforms a PushEvent for a branch into an Event.
func EventFromPush(event *github.PushEvent) (*Event, error) {
	branch, ok := strings.CutPrefix(event.GetRef(), "refs/heads/")
	if !ok {
		return nil, fmt.Errorf("push to %q is not a branch push", event.GetRef())
	}
	if event.GetDeleted() {
		return nil, fmt.Errorf("branch %q was deleted", branch)
	}

	r := event.GetRepo()
	repo := repoFields{
		owner:    r.GetOwner().GetLogin(),
		name:     r.GetName(),
		fullName: r.GetFullName(),
		cloneURL: r.GetCloneURL(),
		private:  r.GetPrivate(),
	}
	if err := repo.validate(); err != nil {
		return nil, err
	}

	e := repo.event(EventPush, event.GetInstallation().GetID(), event.GetSender().GetLogin())
	e.Ref = branch
	e.HeadSHA = event.GetAfter()
	e.TriggerRef = TriggerRef{Trigger: TriggerCommit, Key: fmt.Sprintf("%s@%s", repo.fullName, branch)}
	return e, nil
}

// EventFromRelease transforms a published ReleaseEvent into an Event.
func EventFromRelease(event *github.ReleaseEvent) (*Event, error) {
	if event.GetAction() != "published" {
		return nil, fmt.Errorf("release action %q is not handled", event.GetAction())
	}
	repo := fromRepository(event.GetRepo())
	if err := repo.validate(); err != nil {
		return nil, err
	}
	tag := event.GetRelease().GetTagName()
	if tag == "" {
		return nil, fmt.Errorf("release has no tag name")
	}

	e := repo.event(EventRelease, event.GetInstallation().GetID(), event.GetSender().GetLogin())
	e.TagName = tag
	e.Ref = event.GetRelease().GetTargetCommitish()
	e.TriggerRef = TriggerRef{Trigger: TriggerRelease, Key: fmt.Sprintf("%s:%s", repo.fullName, tag)}
	return e, nil
}

// EventFromIssueComment transforms a newly created comment into an Event.
// Comments on pull requests become pull-request comment events; comments on
// plain issues become issue comment events tied to the latest release.
func EventFromIssueComment(event *github.IssueCommentEvent) (*Event, error) {
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("comment action %q is not handled", event.GetAction())
	}
	repo := fromRepository(event.GetRepo())
	if err := repo.validate(); err != nil {
		return nil, err
	}
	if event.GetComment().GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("commenter information is missing from the event")
	}
	number := event.GetIssue().GetNumber()
	if number <= 0 {
		return nil, fmt.Errorf("invalid issue number: %d", number)
	}

	t := EventIssueComment
	if event.GetIssue().IsPullRequest() {
		t = EventPullRequestComment
	}
	e := repo.event(t, event.GetInstallation().GetID(), event.GetComment().GetUser().GetLogin())
	e.PRNumber = number
	e.Comment = event.GetComment().GetBody()
	if t == EventPullRequestComment {
		e.TriggerRef = TriggerRef{Trigger: TriggerPullRequest, Key: fmt.Sprintf("%s#%d", repo.fullName, number)}
	}
	return e, nil
}

// EventFromInstallation transforms a GitHub App installation into an Event.
func EventFromInstallation(event *github.InstallationEvent) (*Event, error) {
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("installation action %q is not handled", event.GetAction())
	}
	inst := event.GetInstallation()
	if inst.GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}
	if inst.GetAccount().GetLogin() == "" {
		return nil, fmt.Errorf("account information is missing from the event")
	}
	return &Event{
		Type:           EventInstallation,
		InstallationID: inst.GetID(),
		ActorLogin:     event.GetSender().GetLogin(),
		AccountType:    inst.GetAccount().GetType(),
		AccountLogin:   inst.GetAccount().GetLogin(),
	}, nil
}
