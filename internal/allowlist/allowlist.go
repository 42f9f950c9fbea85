// Package allowlist decides which GitHub accounts may use the service.
package allowlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/storage"
)

// Store is the part of storage.Store the allowlist needs.
type Store interface {
	GetAllowlistEntry(ctx context.Context, account string) (*core.AllowlistEntry, error)
	SaveAllowlistEntry(ctx context.Context, entry *core.AllowlistEntry) error
	ListAllowlist(ctx context.Context, status core.AllowlistStatus) ([]core.AllowlistEntry, error)
}

// Verifier tells whether a GitHub login belongs to a known contributor.
type Verifier interface {
	IsKnownGitHubUser(ctx context.Context, login string) (bool, error)
}

// Service implements core.Allowlist.
type Service struct {
	store    Store
	verifier Verifier
	logger   *slog.Logger
}

// NewService creates a Service. verifier may be nil, in which case every new
// account waits for manual approval.
func NewService(store Store, verifier Verifier, logger *slog.Logger) *Service {
	return &Service{store: store, verifier: verifier, logger: logger}
}

func (s *Service) entry(ctx context.Context, account string) (*core.AllowlistEntry, error) {
	e, err := s.store.GetAllowlistEntry(ctx, account)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return e, err
}

// IsApproved implements core.Allowlist.
func (s *Service) IsApproved(ctx context.Context, account string) (bool, error) {
	e, err := s.entry(ctx, account)
	if err != nil {
		return false, fmt.Errorf("failed to read allowlist entry of %s: %w", account, err)
	}
	return e != nil && e.Approved(), nil
}

// AddAccount implements core.Allowlist. The account is approved
// automatically when the installing user is a verified contributor;
// otherwise it is stored as waiting.
func (s *Service) AddAccount(ctx context.Context, account, sender string) (bool, error) {
	e, err := s.entry(ctx, account)
	if err != nil {
		return false, fmt.Errorf("failed to read allowlist entry of %s: %w", account, err)
	}
	if e != nil && e.Approved() {
		return true, nil
	}

	status := core.AllowlistWaiting
	if s.verifier != nil && sender != "" {
		known, err := s.verifier.IsKnownGitHubUser(ctx, sender)
		if err != nil {
			s.logger.Warn("failed to verify sender", "account", account, "sender", sender, "error", err)
		} else if known {
			status = core.AllowlistApproved
		}
	}

	if err := s.store.SaveAllowlistEntry(ctx, &core.AllowlistEntry{Account: account, Status: status, Sender: sender}); err != nil {
		return false, err
	}
	s.logger.Info("account added to allowlist", "account", account, "sender", sender, "status", status)
	return status == core.AllowlistApproved, nil
}

// ApproveManually approves an account on behalf of an administrator.
func (s *Service) ApproveManually(ctx context.Context, account string) error {
	e, err := s.entry(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to read allowlist entry of %s: %w", account, err)
	}
	sender := ""
	if e != nil {
		sender = e.Sender
	}
	if err := s.store.SaveAllowlistEntry(ctx, &core.AllowlistEntry{Account: account, Status: core.AllowlistManual, Sender: sender}); err != nil {
		return err
	}
	s.logger.Info("account approved manually", "account", account)
	return nil
}

// Waiting returns the accounts awaiting approval.
func (s *Service) Waiting(ctx context.Context) ([]core.AllowlistEntry, error) {
	return s.store.ListAllowlist(ctx, core.AllowlistWaiting)
}
