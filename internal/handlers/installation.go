package handlers

import (
	"context"
	"fmt"

	"github.com/sevigo/build-warden/internal/core"
)

// InstallationHandler records a new GitHub App installation and tries to
// approve the account automatically. Accounts that cannot be approved are
// announced in the notifications repository.
type InstallationHandler struct {
	jobHandler
}

func newInstallationHandler(deps *Deps, p Params) (Handler, error) {
	if p.Event == nil || p.Event.Type != core.EventInstallation {
		return nil, fmt.Errorf("%w: installation handler needs an installation event", ErrUnsupportedEvent)
	}
	return &InstallationHandler{jobHandler: newJobHandler(deps, p, TaskInstallation)}, nil
}

// Run implements Handler.
func (h *InstallationHandler) Run(ctx context.Context) (*core.TaskResults, error) {
	event := h.params.Event
	err := h.deps.Installations.CreateInstallation(ctx, &core.Installation{
		InstallationID: event.InstallationID,
		AccountLogin:   event.AccountLogin,
		AccountType:    event.AccountType,
		SenderLogin:    event.ActorLogin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store installation: %w", err)
	}

	approved, err := h.deps.Allowlist.AddAccount(ctx, event.AccountLogin, event.ActorLogin)
	if err != nil {
		h.logger.Warn("automatic approval failed, manual approval needed",
			"account", event.AccountLogin,
			"error", err,
		)
		approved = false
	}

	var msg string
	if approved {
		msg = fmt.Sprintf("%s %s whitelisted!", event.AccountType, event.AccountLogin)
	} else {
		if err := h.requestApproval(ctx); err != nil {
			return nil, err
		}
		msg = fmt.Sprintf("%s %s needs to be approved manually!", event.AccountType, event.AccountLogin)
	}

	h.logger.Info(msg)
	return core.NewResults(true, msg), nil
}

// requestApproval opens an issue so that the team notices the installation.
func (h *InstallationHandler) requestApproval(ctx context.Context) error {
	event := h.params.Event
	project, err := h.deps.Projects.ProjectByName(ctx, h.deps.Config.NotificationsRepo)
	if err != nil {
		return fmt.Errorf("failed to open notifications repository: %w", err)
	}
	title := fmt.Sprintf("%s %s needs to be approved.", event.AccountType, event.AccountLogin)
	body := fmt.Sprintf("Hi @%s, we need to approve you in "+
		"order to start using Packit-as-a-Service. Someone from our team will "+
		"get back to you shortly.\n\n"+
		"For more info, please check out the documentation: "+
		"https://packit.dev/docs/packit-service", event.ActorLogin)
	if err := project.CreateIssue(ctx, title, body); err != nil {
		return fmt.Errorf("failed to create approval issue: %w", err)
	}
	return nil
}
