package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
)

// CreateInstallationClient creates a GitHub client that is authenticated as a specific application installation.
func CreateInstallationClient(ctx context.Context, cfg *config.Config, installationID int64, logger *slog.Logger) (Client, error) {
	logger.Info("Creating GitHub installation client", "installation_id", installationID)

	appClient, err := newAppClient(cfg)
	if err != nil {
		return nil, err
	}

	// Get the installation token
	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}
	logger.Info("Successfully created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	installationClient := github.NewClient(tc)

	return NewGitHubClient(installationClient, logger), nil
}

// newAppClient returns a client authenticated as the GitHub App itself, used
// to look up installations and mint their tokens.
func newAppClient(cfg *config.Config) (*github.Client, error) {
	privateKey, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.GitHub.PrivateKeyPath, err)
	}
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.GitHub.AppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	return github.NewClient(&http.Client{Transport: appTransport}), nil
}

// ProjectFactory resolves repositories to projects authenticated as the
// installation of the app in them.
type ProjectFactory struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewProjectFactory creates a ProjectFactory.
func NewProjectFactory(cfg *config.Config, logger *slog.Logger) *ProjectFactory {
	return &ProjectFactory{cfg: cfg, logger: logger}
}

// ProjectForEvent returns the repository the event happened in.
func (f *ProjectFactory) ProjectForEvent(ctx context.Context, event *core.Event) (core.Project, error) {
	if event.RepoOwner == "" || event.RepoName == "" {
		return nil, fmt.Errorf("event %s carries no repository", event.Type)
	}
	if event.InstallationID == 0 {
		return f.ProjectByName(ctx, event.RepoOwner+"/"+event.RepoName)
	}
	client, err := CreateInstallationClient(ctx, f.cfg, event.InstallationID, f.logger)
	if err != nil {
		return nil, err
	}
	return NewProject(client, event.RepoOwner, event.RepoName), nil
}

// ProjectByName returns owner/repo authenticated as the app installation
// covering it.
func (f *ProjectFactory) ProjectByName(ctx context.Context, fullName string) (core.Project, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository name %q", fullName)
	}
	appClient, err := newAppClient(f.cfg)
	if err != nil {
		return nil, err
	}
	inst, _, err := appClient.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("app is not installed in %s: %w", fullName, err)
	}
	client, err := CreateInstallationClient(ctx, f.cfg, inst.GetID(), f.logger)
	if err != nil {
		return nil, err
	}
	return NewProject(client, owner, repo), nil
}
