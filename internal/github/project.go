package github

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/build-warden/internal/core"
)

// mergePermissions are the permission levels allowed to merge pull requests.
var mergePermissions = []string{"admin", "maintain", "write"}

// Project is a GitHub repository seen through an authenticated client.
type Project struct {
	owner  string
	repo   string
	client Client
}

// NewProject creates the project owner/repo backed by client.
func NewProject(client Client, owner, repo string) *Project {
	return &Project{owner: owner, repo: repo, client: client}
}

// FullName implements core.Project.
func (p *Project) FullName() string {
	return p.owner + "/" + p.repo
}

// CanMergePR implements core.Project.
func (p *Project) CanMergePR(ctx context.Context, login string) (bool, error) {
	level, err := p.client.GetPermissionLevel(ctx, p.owner, p.repo, login)
	if err != nil {
		return false, fmt.Errorf("failed to get permissions of %s in %s: %w", login, p.FullName(), err)
	}
	return slices.Contains(mergePermissions, level), nil
}

// CreateIssue implements core.Project.
func (p *Project) CreateIssue(ctx context.Context, title, body string) error {
	return p.client.CreateIssue(ctx, p.owner, p.repo, title, body)
}

// SetCommitStatus implements core.Project.
func (p *Project) SetCommitStatus(ctx context.Context, sha string, state core.CommitState, targetURL, description, statusContext string) error {
	status := &github.RepoStatus{
		State:       github.Ptr(string(state)),
		Description: github.Ptr(truncateDescription(description)),
		Context:     github.Ptr(statusContext),
	}
	if targetURL != "" {
		status.TargetURL = github.Ptr(targetURL)
	}
	return p.client.CreateStatus(ctx, p.owner, p.repo, sha, status)
}

// LatestReleaseTag implements core.Project.
func (p *Project) LatestReleaseTag(ctx context.Context) (string, error) {
	return p.client.GetLatestReleaseTag(ctx, p.owner, p.repo)
}

// PullRequestHeadSHA implements core.Project.
func (p *Project) PullRequestHeadSHA(ctx context.Context, number int) (string, error) {
	pr, err := p.client.GetPullRequest(ctx, p.owner, p.repo, number)
	if err != nil {
		return "", err
	}
	sha := pr.GetHead().GetSHA()
	if sha == "" {
		return "", fmt.Errorf("pull request #%d in %s has no head commit", number, p.FullName())
	}
	return sha, nil
}

// FileContents returns a file of the repository at ref.
func (p *Project) FileContents(ctx context.Context, path, ref string) ([]byte, error) {
	return p.client.GetFileContents(ctx, p.owner, p.repo, path, ref)
}

// GitHub rejects status descriptions longer than 140 characters.
const maxDescriptionLen = 140

func truncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) <= maxDescriptionLen {
		return description
	}
	return string(runes[:maxDescriptionLen-3]) + "..."
}
