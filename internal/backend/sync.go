package backend

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
)

const (
	cloneTimeout       = 5 * time.Minute
	sourcesFile        = "sources"
	defaultArchiveURL  = "https://github.com/{repo}/archive/refs/tags/{tag}.tar.gz"
	distGitAuthor      = "build-warden"
	distGitAuthorEmail = "build-warden@users.noreply.github.com"
)

// DistGitSync syncs an upstream release archive into dist-git branches.
// Statuses are posted per branch.
type DistGitSync struct {
	*github.StatusReporter
	distGitURL      string
	token           string
	archiveTemplate string
	workDir         string
	http            *http.Client
	params          handlers.HelperParams
	logger          *slog.Logger
}

// SyncRelease implements core.SyncHelper. It fails with
// core.ErrArtifactUnavailable while the release archive is not published.
func (s *DistGitSync) SyncRelease(ctx context.Context, branch, tag string) error {
	if err := os.MkdirAll(s.workDir, 0o750); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	dir, err := os.MkdirTemp(s.workDir, "sync-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer s.cleanup(dir)

	archiveURL := s.archiveURL(tag)
	archiveName := path.Base(archiveURL)
	checksum, err := s.downloadArchive(ctx, archiveURL, filepath.Join(dir, archiveName))
	if err != nil {
		return err
	}

	cloneCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	repoDir := filepath.Join(dir, "dist-git")
	s.logger.Info("cloning dist-git repository", "url", s.repoURL(), "branch", branch)
	repo, err := git.PlainCloneContext(cloneCtx, repoDir, false, &git.CloneOptions{
		URL:           s.repoURL(),
		Auth:          s.auth(),
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if err != nil {
		return fmt.Errorf("git clone %s branch %s: %w", s.repoURL(), branch, err)
	}

	changed, err := applyRelease(repo, repoDir, tag, archiveName, checksum)
	if err != nil {
		return err
	}
	if !changed {
		s.logger.Info("dist-git branch already up to date", "branch", branch, "tag", tag)
		return nil
	}

	if err := repo.PushContext(cloneCtx, &git.PushOptions{Auth: s.auth()}); err != nil &&
		!errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("git push to %s: %w", branch, err)
	}
	s.logger.Info("release synced to dist-git", "branch", branch, "tag", tag)
	return nil
}

func (s *DistGitSync) archiveURL(tag string) string {
	tmpl := s.archiveTemplate
	if tmpl == "" {
		tmpl = defaultArchiveURL
	}
	return strings.NewReplacer("{repo}", s.params.Event.RepoFullName, "{tag}", tag).Replace(tmpl)
}

func (s *DistGitSync) repoURL() string {
	name := s.params.Event.RepoName
	if s.params.Package != nil && s.params.Package.DownstreamPackageName != "" {
		name = s.params.Package.DownstreamPackageName
	}
	return strings.TrimRight(s.distGitURL, "/") + "/" + name + ".git"
}

func (s *DistGitSync) auth() transport.AuthMethod {
	if s.token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: distGitAuthor, Password: s.token}
}

// downloadArchive stores the archive at dst and returns its SHA-512.
func (s *DistGitSync) downloadArchive(ctx context.Context, url, dst string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create archive request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("archive %s: %w", url, core.ErrArtifactUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download %s: status %d", url, resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	defer f.Close()

	h := sha512.New()
	if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
		return "", fmt.Errorf("failed to download %s: %w", url, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *DistGitSync) cleanup(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Warn("cleanup failed", "path", dir, "error", err)
	}
}

// applyRelease records the archive in the sources file and commits it. It
// reports false when the branch already carries the archive.
func applyRelease(repo *git.Repository, dir, tag, archiveName, checksum string) (bool, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}

	line := fmt.Sprintf("SHA512 (%s) = %s\n", archiveName, checksum)
	if err := os.WriteFile(filepath.Join(dir, sourcesFile), []byte(line), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", sourcesFile, err)
	}
	if _, err := wt.Add(sourcesFile); err != nil {
		return false, fmt.Errorf("git add %s: %w", sourcesFile, err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	_, err = wt.Commit(fmt.Sprintf("New upstream release: %s", tag), &git.CommitOptions{
		Author: &object.Signature{Name: distGitAuthor, Email: distGitAuthorEmail, When: time.Now()},
	})
	if err != nil {
		return false, fmt.Errorf("git commit: %w", err)
	}
	return true, nil
}
