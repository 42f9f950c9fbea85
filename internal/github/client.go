// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// ErrNotFound is returned when the requested file or release does not exist.
var ErrNotFound = errors.New("not found on GitHub")

// Client defines the set of GitHub operations the service needs:
// permissions, issues, commit statuses, releases and file contents.
type Client interface {
	GetPermissionLevel(ctx context.Context, owner, repo, login string) (string, error)
	CreateIssue(ctx context.Context, owner, repo, title, body string) error
	CreateStatus(ctx context.Context, owner, repo, sha string, status *github.RepoStatus) error
	GetLatestReleaseTag(ctx context.Context, owner, repo string) (string, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetFileContents(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a new GitHub client authenticated with a Personal Access Token (PAT).
// This is useful for CLI tools or local development where an App installation is not available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)
	return &gitHubClient{client: client, logger: logger}
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// GetPermissionLevel returns the permission of login on the repository:
// admin, maintain, write, triage, read or none.
func (g *gitHubClient) GetPermissionLevel(ctx context.Context, owner, repo, login string) (string, error) {
	level, resp, err := g.client.Repositories.GetPermissionLevel(ctx, owner, repo, login)
	if err != nil {
		if isNotFound(resp) {
			return "none", nil
		}
		g.logger.Error("failed to get permission level", "owner", owner, "repo", repo, "user", login, "error", err)
		return "", err
	}
	return level.GetPermission(), nil
}

// CreateIssue opens a new issue in the repository.
func (g *gitHubClient) CreateIssue(ctx context.Context, owner, repo, title, body string) error {
	req := &github.IssueRequest{Title: &title, Body: &body}
	_, _, err := g.client.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		g.logger.Error("failed to create issue", "owner", owner, "repo", repo, "title", title, "error", err)
	}
	return err
}

// CreateStatus sets a commit status on sha.
func (g *gitHubClient) CreateStatus(ctx context.Context, owner, repo, sha string, status *github.RepoStatus) error {
	_, _, err := g.client.Repositories.CreateStatus(ctx, owner, repo, sha, status)
	if err != nil {
		g.logger.Error("failed to create commit status", "owner", owner, "repo", repo, "sha", sha, "context", status.GetContext(), "error", err)
	}
	return err
}

// GetLatestReleaseTag returns the tag of the latest published release.
func (g *gitHubClient) GetLatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	release, resp, err := g.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		if isNotFound(resp) {
			return "", fmt.Errorf("no release in %s/%s: %w", owner, repo, ErrNotFound)
		}
		g.logger.Error("failed to get latest release", "owner", owner, "repo", repo, "error", err)
		return "", err
	}
	return release.GetTagName(), nil
}

// GetPullRequest fetches a single pull request.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, resp, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("pull request #%d in %s/%s: %w", number, owner, repo, ErrNotFound)
		}
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "number", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// GetFileContents returns the decoded contents of a file at ref. An empty ref
// means the default branch.
func (g *gitHubClient) GetFileContents(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, _, resp, err := g.client.Repositories.GetContents(ctx, owner, repo, path, opts)
	if err != nil {
		if isNotFound(resp) {
			return nil, fmt.Errorf("%s in %s/%s: %w", path, owner, repo, ErrNotFound)
		}
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("%s in %s/%s is a directory: %w", path, owner, repo, ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}
