package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/handlers"
)

type status struct {
	state   core.CommitState
	context string
	desc    string
	url     string
}

type fakeProject struct {
	mu       sync.Mutex
	statuses []status
}

func (p *fakeProject) FullName() string { return "acme/widget" }

func (p *fakeProject) CanMergePR(context.Context, string) (bool, error) { return true, nil }

func (p *fakeProject) CreateIssue(context.Context, string, string) error { return nil }

func (p *fakeProject) SetCommitStatus(_ context.Context, _ string, state core.CommitState, url, desc, statusContext string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses = append(p.statuses, status{state: state, context: statusContext, desc: desc, url: url})
	return nil
}

func (p *fakeProject) LatestReleaseTag(context.Context) (string, error) { return "1.0", nil }
func (p *fakeProject) PullRequestHeadSHA(context.Context, int) (string, error) {
	return "abc", nil
}

func (p *fakeProject) contexts() map[string]status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := map[string]status{}
	for _, s := range p.statuses {
		out[s.context] = s
	}
	return out
}

type fakeBuilds struct {
	mu     sync.Mutex
	saved  []*core.BuildRecord
	nextID int64
}

func (b *fakeBuilds) SaveBuild(_ context.Context, rec *core.BuildRecord) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.saved = append(b.saved, rec)
	return b.nextID, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func prParams(project core.Project, targets ...string) handlers.HelperParams {
	event := &core.Event{
		Type:           core.EventPullRequest,
		RepoOwner:      "acme",
		RepoName:       "widget",
		RepoFullName:   "acme/widget",
		RepoCloneURL:   "https://github.com/acme/widget.git",
		InstallationID: 42,
		PRNumber:       3,
		HeadSHA:        "abc123",
		TriggerRef:     core.TriggerRef{Trigger: core.TriggerPullRequest, Key: "acme/widget#3"},
	}
	job := &core.JobConfig{
		Type:     core.JobTypeCoprBuild,
		Trigger:  core.TriggerPullRequest,
		Metadata: core.JobMetadata{Targets: targets},
	}
	return handlers.HelperParams{Project: project, Job: job, Event: event, Trigger: event.TriggerRef}
}

func newFactory(t *testing.T, backends config.BackendsConfig, builds BuildSaver) *Factory {
	t.Helper()
	return NewFactory(&config.Config{Backends: backends}, builds, discard())
}

func TestCoprBuildHelper_SubmitsAndSavesBuilds(t *testing.T) {
	var got coprBuildRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api_3/build/create/scm", r.URL.Path)
		assert.Equal(t, "Bearer copr-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id": 1234}`))
	}))
	defer srv.Close()

	project := &fakeProject{}
	builds := &fakeBuilds{}
	f := newFactory(t, config.BackendsConfig{CoprURL: srv.URL, CoprToken: "copr-token", CoprOwner: "packit"}, builds)

	res := f.CoprBuildHelper(prParams(project, "fedora-rawhide-x86_64", "fedora-35-x86_64")).RunBuild(context.Background())

	require.True(t, res.Success, res.Msg)
	assert.Equal(t, "Copr build 1234 submitted.", res.Msg)
	assert.Equal(t, "packit", got.OwnerName)
	assert.Equal(t, "acme-widget-3", got.ProjectName)
	assert.Equal(t, "abc123", got.Committish)

	require.Len(t, builds.saved, 2)
	for _, rec := range builds.saved {
		assert.Equal(t, "1234", rec.BuildID)
		assert.Equal(t, "copr", rec.Backend)
		assert.Equal(t, "acme/widget", rec.RepoFullName)
		assert.Equal(t, int64(42), rec.InstallationID)
		assert.Equal(t, core.TriggerRef{Trigger: core.TriggerPullRequest, Key: "acme/widget#3"}, rec.TriggerRef())
	}

	statuses := project.contexts()
	require.Len(t, statuses, 2)
	s := statuses["packit/rpm-build-fedora-rawhide-x86_64"]
	assert.Equal(t, core.StatePending, s.state)
	assert.Equal(t, srv.URL+"/coprs/build/1234/", s.url)
}

func TestCoprBuildHelper_SubmitFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	project := &fakeProject{}
	builds := &fakeBuilds{}
	f := newFactory(t, config.BackendsConfig{CoprURL: srv.URL}, builds)

	res := f.CoprBuildHelper(prParams(project, "fedora-rawhide-x86_64")).RunBuild(context.Background())

	assert.False(t, res.Success)
	assert.Contains(t, res.Msg, "quota exceeded")
	assert.Empty(t, builds.saved)
	assert.Equal(t, core.StateError, project.contexts()["packit/rpm-build-fedora-rawhide-x86_64"].state)
}

func TestCoprBuildHelper_NoTargets(t *testing.T) {
	f := newFactory(t, config.BackendsConfig{CoprURL: "http://unused"}, &fakeBuilds{})
	res := f.CoprBuildHelper(prParams(&fakeProject{})).RunBuild(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, msgNoTargets, res.Msg)
}

func TestFactory_JobLevelStatusWithoutTargets(t *testing.T) {
	project := &fakeProject{}
	f := newFactory(t, config.BackendsConfig{}, &fakeBuilds{})

	f.CoprBuildHelper(prParams(project)).ReportStatusToAll(context.Background(), "Only users with write access may build.", core.StateFailure, "")

	got := project.contexts()
	require.Len(t, got, 1)
	assert.Equal(t, core.StateFailure, got["packit/rpm-build"].state)
}

func TestFactory_SyncHelperReportsPerBranch(t *testing.T) {
	project := &fakeProject{}
	f := newFactory(t, config.BackendsConfig{}, &fakeBuilds{})

	p := prParams(project)
	p.Job = &core.JobConfig{
		Type:     core.JobTypeProposeDownstream,
		Trigger:  core.TriggerRelease,
		Metadata: core.JobMetadata{DistGitBranches: []string{"f35", "f36"}},
	}
	f.SyncHelper(p).ReportStatusToAll(context.Background(), "Syncing release", core.StatePending, "")

	got := project.contexts()
	assert.Len(t, got, 2)
	assert.Contains(t, got, "packit/propose-downstream-f35")
	assert.Contains(t, got, "packit/propose-downstream-f36")
}

func TestKojiBuildHelper_PartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req kojiBuildRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Scratch)
		if req.Target == "f35" {
			http.Error(w, "no such target", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"task_id": 77}`))
	}))
	defer srv.Close()

	builds := &fakeBuilds{}
	f := newFactory(t, config.BackendsConfig{KojiURL: srv.URL}, builds)

	res := f.KojiBuildHelper(prParams(&fakeProject{}, "f34", "f35")).RunBuild(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, []string{"f35"}, res.FailedTargets())
	require.Len(t, builds.saved, 1)
	assert.Equal(t, "77", builds.saved[0].BuildID)
	assert.Equal(t, "f34", builds.saved[0].Chroot)
}

func TestTestingFarmHelper_RunTests(t *testing.T) {
	var got tfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/requests", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id": "req-1"}`))
	}))
	defer srv.Close()

	project := &fakeProject{}
	f := newFactory(t, config.BackendsConfig{TestingFarmURL: srv.URL, TestingFarmAPIKey: "key"}, &fakeBuilds{})

	res := f.TestingFarmHelper(prParams(project, "fedora-rawhide-x86_64")).RunTests(context.Background(), "fedora-rawhide-x86_64")

	require.True(t, res.Success, res.Msg)
	assert.Equal(t, "key", got.APIKey)
	require.Len(t, got.Environments, 1)
	assert.Equal(t, "x86_64", got.Environments[0].Arch)
	assert.Equal(t, "Fedora-Rawhide", got.Environments[0].OS.Compose)
	assert.Equal(t, srv.URL+"/requests/req-1", project.contexts()["packit/testing-farm-fedora-rawhide-x86_64"].url)
}

func TestSplitChroot(t *testing.T) {
	tests := []struct {
		chroot, compose, arch string
	}{
		{"fedora-rawhide-x86_64", "Fedora-Rawhide", "x86_64"},
		{"centos-stream-9-aarch64", "Centos-Stream-9", "aarch64"},
		{"plain", "plain", ""},
	}
	for _, tt := range tests {
		t.Run(tt.chroot, func(t *testing.T) {
			compose, arch := splitChroot(tt.chroot)
			assert.Equal(t, tt.compose, compose)
			assert.Equal(t, tt.arch, arch)
		})
	}
}

func TestDistGitSync_MissingArchiveIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := newFactory(t, config.BackendsConfig{
		ArchiveURLTemplate: srv.URL + "/{repo}/archive/{tag}.tar.gz",
		DistGitURL:         "http://unused.invalid",
		WorkDir:            t.TempDir(),
	}, &fakeBuilds{})

	err := f.SyncHelper(prParams(&fakeProject{})).SyncRelease(context.Background(), "f35", "1.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrArtifactUnavailable))
}

func TestDistGitSync_RepoURL(t *testing.T) {
	p := prParams(&fakeProject{})
	s := &DistGitSync{distGitURL: "https://src.example.org/rpms/", params: p}
	assert.Equal(t, "https://src.example.org/rpms/widget.git", s.repoURL())

	p.Package = &core.PackageConfig{DownstreamPackageName: "python-widget"}
	s.params = p
	assert.Equal(t, "https://src.example.org/rpms/python-widget.git", s.repoURL())
	assert.Nil(t, s.auth())
}

func TestApplyRelease(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "widget.spec"), []byte("Name: widget\n"), 0o644))
	_, err = wt.Add("widget.spec")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{Author: &object.Signature{Name: "t", Email: "t@example.org"}})
	require.NoError(t, err)

	changed, err := applyRelease(repo, dir, "1.0", "1.0.tar.gz", "deadbeef")
	require.NoError(t, err)
	assert.True(t, changed)

	content, err := os.ReadFile(filepath.Join(dir, sourcesFile))
	require.NoError(t, err)
	assert.Equal(t, "SHA512 (1.0.tar.gz) = deadbeef\n", string(content))

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "New upstream release: 1.0", commit.Message)

	changed, err = applyRelease(repo, dir, "1.0", "1.0.tar.gz", "deadbeef")
	require.NoError(t, err)
	assert.False(t, changed, "the same archive twice is a no-op")
}
