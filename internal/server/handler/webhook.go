// Package handler provides HTTP handlers for the Build-Warden application.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
)

// coprSucceeded is the build end status that triggers tests.
const coprSucceeded = "succeeded"

// BuildStore looks up submitted builds and records their final state.
type BuildStore interface {
	GetBuildByID(ctx context.Context, id int64) (*core.BuildRecord, error)
	UpdateBuildStatus(ctx context.Context, id int64, status string) error
}

// WebhookHandler processes incoming webhooks from GitHub and Copr.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	builds     BuildStore
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given configuration and dispatcher.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, builds BuildStore, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		builds:     builds,
		logger:     logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHub.WebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	webhookType := github.WebHookType(r)
	raw, err := github.ParseWebHook(webhookType, payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	var event *core.Event
	switch e := raw.(type) {
	case *github.PullRequestEvent:
		event, err = core.EventFromPullRequest(e)
	case *github.PushEvent:
		event, err = core.EventFromPush(e)
	case *github.ReleaseEvent:
		event, err = core.EventFromRelease(e)
	case *github.IssueCommentEvent:
		event, err = core.EventFromIssueComment(e)
	case *github.InstallationEvent:
		event, err = core.EventFromInstallation(e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", webhookType)
		_, _ = fmt.Fprint(w, "Event type not handled")
		return
	}
	if err != nil {
		h.logger.Debug("ignoring webhook", "type", webhookType, "reason", err.Error())
		_, _ = fmt.Fprint(w, "Event ignored")
		return
	}

	h.dispatch(r.Context(), w, event)
}

// CoprBuildEnd is the notification Copr sends when a build chroot finished.
type CoprBuildEnd struct {
	// BuildID is the ID of the stored build record.
	BuildID int64  `json:"build_id"`
	Chroot  string `json:"chroot"`
	Status  string `json:"status"`
}

// HandleCoprBuildEnd records the build result and, for successful builds,
// dispatches the jobs that wait for it. Notifications are signed like GitHub
// webhooks: an HMAC-SHA256 of the body in X-Hub-Signature-256, keyed with
// backends.copr_webhook_secret.
func (h *WebhookHandler) HandleCoprBuildEnd(w http.ResponseWriter, r *http.Request) {
	secret := h.cfg.Backends.CoprWebhookSecret
	if secret == "" {
		h.logger.Warn("copr notification rejected, no secret configured")
		http.Error(w, "Copr notifications are not enabled", http.StatusForbidden)
		return
	}
	payload, err := github.ValidatePayload(r, []byte(secret))
	if err != nil {
		h.logger.Error("invalid copr notification signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var msg CoprBuildEnd
	if err := json.Unmarshal(payload, &msg); err != nil {
		http.Error(w, "Could not parse notification", http.StatusBadRequest)
		return
	}
	if msg.BuildID <= 0 || msg.Chroot == "" {
		http.Error(w, "build_id and chroot are required", http.StatusBadRequest)
		return
	}

	build, err := h.builds.GetBuildByID(r.Context(), msg.BuildID)
	if err != nil {
		h.logger.Error("failed to load build", "build_id", msg.BuildID, "error", err)
		http.Error(w, "Unknown build", http.StatusNotFound)
		return
	}
	if build.Chroot != msg.Chroot {
		h.logger.Warn("copr notification chroot does not match the build",
			"build_id", msg.BuildID, "chroot", msg.Chroot, "build_chroot", build.Chroot)
		http.Error(w, "Chroot does not match the build", http.StatusBadRequest)
		return
	}

	if err := h.builds.UpdateBuildStatus(r.Context(), msg.BuildID, msg.Status); err != nil {
		h.logger.Error("failed to update build status", "build_id", msg.BuildID, "error", err)
		http.Error(w, "Failed to record build status", http.StatusInternalServerError)
		return
	}
	if msg.Status != coprSucceeded {
		h.logger.Info("build did not succeed, nothing to dispatch", "build_id", msg.BuildID, "status", msg.Status)
		_, _ = fmt.Fprint(w, "Build status recorded")
		return
	}

	h.dispatch(r.Context(), w, &core.Event{
		Type:    core.EventCoprBuildEnd,
		BuildID: msg.BuildID,
		Chroot:  msg.Chroot,
	})
}

func (h *WebhookHandler) dispatch(ctx context.Context, w http.ResponseWriter, event *core.Event) {
	results, err := h.dispatcher.Dispatch(ctx, event)
	if err != nil {
		h.logger.Error("failed to dispatch event", "type", event.Type, "repo", event.RepoFullName, "error", err)
		http.Error(w, "Failed to process event", http.StatusInternalServerError)
		return
	}

	h.logger.Info("event dispatched", "type", event.Type, "repo", event.RepoFullName, "results", len(results))
	if results == nil {
		results = []*core.TaskResults{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(results)
}
