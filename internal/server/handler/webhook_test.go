package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
)

const secret = "s3cret"

type recordingDispatcher struct {
	events []*core.Event
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event *core.Event) ([]*core.TaskResults, error) {
	d.events = append(d.events, event)
	if d.err != nil {
		return nil, d.err
	}
	return []*core.TaskResults{core.ResultsFor(true, "Job created.", nil, event)}, nil
}

const coprSecret = "c0pr"

type memoryBuilds struct {
	builds map[int64]*core.BuildRecord
	status map[int64]string
}

func (s *memoryBuilds) GetBuildByID(_ context.Context, id int64) (*core.BuildRecord, error) {
	b, ok := s.builds[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (s *memoryBuilds) UpdateBuildStatus(_ context.Context, id int64, status string) error {
	s.status[id] = status
	return nil
}

func newHandler(d core.JobDispatcher) (*WebhookHandler, *memoryBuilds) {
	cfg := &config.Config{
		GitHub:   config.GitHubConfig{WebhookSecret: secret},
		Backends: config.BackendsConfig{CoprWebhookSecret: coprSecret},
	}
	builds := &memoryBuilds{
		builds: map[int64]*core.BuildRecord{7: {ID: 7, Chroot: "fedora-rawhide-x86_64"}},
		status: map[int64]string{},
	}
	return NewWebhookHandler(cfg, d, builds, slog.New(slog.NewTextHandler(io.Discard, nil))), builds
}

func sign(key, body string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func signedRequest(eventType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", sign(secret, body))
	return req
}

func coprRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/copr", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Hub-Signature-256", sign(key, body))
	}
	return req
}

const pullRequestPayload = `{
  "action": "opened",
  "installation": {"id": 42},
  "repository": {"name": "widget", "full_name": "acme/widget", "owner": {"login": "acme"},
                 "clone_url": "https://github.com/acme/widget.git"},
  "pull_request": {"number": 3, "user": {"login": "octocat"},
                   "head": {"sha": "abc123"}, "base": {"ref": "main"}}
}`

func TestWebhookHandler_DispatchesPullRequest(t *testing.T) {
	d := &recordingDispatcher{}
	h, _ := newHandler(d)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest("pull_request", pullRequestPayload))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	e := d.events[0]
	assert.Equal(t, core.EventPullRequest, e.Type)
	assert.Equal(t, "acme/widget", e.RepoFullName)
	assert.Equal(t, "octocat", e.ActorLogin)
	assert.Equal(t, int64(42), e.InstallationID)
	assert.Equal(t, core.TriggerRef{Trigger: core.TriggerPullRequest, Key: "acme/widget#3"}, e.TriggerRef)

	var results []core.TaskResults
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	d := &recordingDispatcher{}
	h, _ := newHandler(d)

	req := signedRequest("pull_request", pullRequestPayload)
	req.Header.Set("X-Hub-Signature-256", "sha256=00")
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, d.events)
}

func TestWebhookHandler_IgnoresUnhandledActions(t *testing.T) {
	tests := []struct {
		name, eventType, body string
	}{
		{"closed pull request", "pull_request", strings.Replace(pullRequestPayload, `"opened"`, `"closed"`, 1)},
		{"tag push", "push", `{"ref": "refs/tags/v1", "repository": {"name": "widget", "owner": {"login": "acme"}}}`},
		{"unknown event", "star", `{"action": "created"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{}
			h, _ := newHandler(d)

			rec := httptest.NewRecorder()
			h.Handle(rec, signedRequest(tt.eventType, tt.body))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, d.events)
		})
	}
}

func TestWebhookHandler_DispatchFailure(t *testing.T) {
	d := &recordingDispatcher{err: errors.New("github is down")}
	h, _ := newHandler(d)

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest("pull_request", pullRequestPayload))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookHandler_Installation(t *testing.T) {
	d := &recordingDispatcher{}
	h, _ := newHandler(d)

	body := `{"action": "created", "sender": {"login": "octocat"},
	          "installation": {"id": 9, "account": {"login": "acme", "type": "Organization"}}}`
	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest("installation", body))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	assert.Equal(t, core.EventInstallation, d.events[0].Type)
	assert.Equal(t, "acme", d.events[0].AccountLogin)
	assert.Equal(t, "Organization", d.events[0].AccountType)
}

func TestWebhookHandler_CoprBuildEnd(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantCode     int
		wantDispatch bool
	}{
		{"succeeded build dispatches", `{"build_id": 7, "chroot": "fedora-rawhide-x86_64", "status": "succeeded"}`, http.StatusAccepted, true},
		{"failed build is only recorded", `{"build_id": 7, "chroot": "fedora-rawhide-x86_64", "status": "failed"}`, http.StatusOK, false},
		{"unknown build", `{"build_id": 404, "chroot": "fedora-rawhide-x86_64", "status": "succeeded"}`, http.StatusNotFound, false},
		{"chroot of another build", `{"build_id": 7, "chroot": "epel-9-x86_64", "status": "succeeded"}`, http.StatusBadRequest, false},
		{"missing chroot", `{"build_id": 7, "status": "succeeded"}`, http.StatusBadRequest, false},
		{"garbage", `not json`, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDispatcher{}
			h, builds := newHandler(d)

			rec := httptest.NewRecorder()
			h.HandleCoprBuildEnd(rec, coprRequest(coprSecret, tt.body))

			assert.Equal(t, tt.wantCode, rec.Code)
			if !tt.wantDispatch {
				assert.Empty(t, d.events)
				return
			}
			require.Len(t, d.events, 1)
			assert.Equal(t, core.EventCoprBuildEnd, d.events[0].Type)
			assert.Equal(t, int64(7), d.events[0].BuildID)
			assert.Equal(t, "fedora-rawhide-x86_64", d.events[0].Chroot)
			assert.Equal(t, "succeeded", builds.status[7])
		})
	}
}

func TestWebhookHandler_CoprBuildEndAuthentication(t *testing.T) {
	body := `{"build_id": 7, "chroot": "fedora-rawhide-x86_64", "status": "succeeded"}`

	t.Run("unsigned", func(t *testing.T) {
		d := &recordingDispatcher{}
		h, builds := newHandler(d)
		rec := httptest.NewRecorder()
		h.HandleCoprBuildEnd(rec, coprRequest("", body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, d.events)
		assert.Empty(t, builds.status)
	})

	t.Run("wrong key", func(t *testing.T) {
		d := &recordingDispatcher{}
		h, builds := newHandler(d)
		rec := httptest.NewRecorder()
		h.HandleCoprBuildEnd(rec, coprRequest(secret, body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, d.events)
		assert.Empty(t, builds.status)
	})

	t.Run("no secret configured", func(t *testing.T) {
		d := &recordingDispatcher{}
		h, builds := newHandler(d)
		h.cfg.Backends.CoprWebhookSecret = ""
		rec := httptest.NewRecorder()
		h.HandleCoprBuildEnd(rec, coprRequest("", body))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, d.events)
		assert.Empty(t, builds.status)
	})
}
