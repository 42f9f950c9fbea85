package backend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/handlers"
)

const testingFarmKind = "testing-farm"

type tfRequest struct {
	APIKey       string          `json:"api_key"`
	Test         tfTest          `json:"test"`
	Environments []tfEnvironment `json:"environments"`
}

type tfTest struct {
	FMF tfFMF `json:"fmf"`
}

type tfFMF struct {
	URL string `json:"url"`
	Ref string `json:"ref"`
}

type tfEnvironment struct {
	Arch string `json:"arch"`
	OS   tfOS   `json:"os"`
}

type tfOS struct {
	Compose string `json:"compose"`
}

type tfResponse struct {
	ID string `json:"id"`
}

// TestingFarmHelper requests test runs for builds that finished in Copr.
type TestingFarmHelper struct {
	*github.StatusReporter
	api     *apiClient
	apiKey  string
	project core.Project
	params  handlers.HelperParams
	logger  *slog.Logger
}

// RunTests implements core.TestHelper.
func (h *TestingFarmHelper) RunTests(ctx context.Context, chroot string) *core.TaskResults {
	event := h.params.Event
	compose, arch := splitChroot(chroot)
	reporter := github.NewStatusReporter(h.project, event.HeadSHA,
		[]string{github.StatusContext(testingFarmKind, chroot)}, h.logger)

	req := tfRequest{
		APIKey: h.apiKey,
		Test:   tfTest{FMF: tfFMF{URL: event.RepoCloneURL, Ref: event.HeadSHA}},
		Environments: []tfEnvironment{
			{Arch: arch, OS: tfOS{Compose: compose}},
		},
	}
	var resp tfResponse
	if err := h.api.post(ctx, "/requests", req, &resp); err != nil {
		h.logger.Error("failed to submit testing farm request", "chroot", chroot, "error", err)
		msg := fmt.Sprintf("Failed to submit tests: %v", err)
		reporter.ReportStatusToAll(ctx, msg, core.StateError, "")
		return core.NewResults(false, msg)
	}

	url := fmt.Sprintf("%s/requests/%s", h.api.baseURL, resp.ID)
	reporter.ReportStatusToAll(ctx, "Tests have been submitted ...", core.StatePending, url)
	h.logger.Info("testing farm request submitted", "request_id", resp.ID, "chroot", chroot)
	return core.NewResults(true, fmt.Sprintf("Testing farm request %s submitted.", resp.ID))
}

// splitChroot turns "fedora-rawhide-x86_64" into ("Fedora-Rawhide", "x86_64").
func splitChroot(chroot string) (string, string) {
	i := strings.LastIndex(chroot, "-")
	if i < 0 {
		return chroot, ""
	}
	distro, arch := chroot[:i], chroot[i+1:]
	parts := strings.Split(distro, "-")
	for j, p := range parts {
		if p != "" {
			parts[j] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "-"), arch
}
