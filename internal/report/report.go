// Package report turns aggregated per-target failures into forge issues.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sevigo/build-warden/internal/core"
)

// RetriggerMessage tells users how to rerun a job from a comment.
func RetriggerMessage(job, command, place string) string {
	return fmt.Sprintf("You can retrigger the %s by adding a comment (`/packit %s`) into this %s.", job, command, place)
}

// Row is one line of a failure table.
type Row struct {
	Target string
	Error  string
}

// Rows returns one row per failed target sorted by target name, with
// newlines in the error text replaced by spaces.
func Rows(errs map[string]string) []Row {
	rows := make([]Row, 0, len(errs))
	for target, msg := range errs {
		rows = append(rows, Row{Target: target, Error: strings.ReplaceAll(msg, "\n", " ")})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Target < rows[j].Target })
	return rows
}

// FailureTable renders errs as a markdown table.
func FailureTable(targetHeader string, errs map[string]string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "| %s | error |\n", targetHeader)
	fmt.Fprintf(&sb, "| %s | ----- |\n", strings.Repeat("-", len(targetHeader)))
	for _, r := range Rows(errs) {
		fmt.Fprintf(&sb, "| `%s` | `%s` |\n", r.Target, r.Error)
	}
	return sb.String()
}

// ProposeDownstreamIssue returns the title and body of the issue opened when
// syncing a release to dist-git failed for some branches.
func ProposeDownstreamIssue(tag string, errs map[string]string) (string, string) {
	title := fmt.Sprintf("[packit] Propose update failed for release %s", tag)
	body := "Packit failed on creating pull-requests in dist-git:\n\n" +
		FailureTable("dist-git branch", errs) +
		"\n\n" +
		RetriggerMessage("update", "propose-update", "issue") + "\n"
	return title, body
}

// Reporter publishes aggregated failures.
type Reporter struct {
	logger *slog.Logger
}

// NewReporter creates a Reporter.
func NewReporter(logger *slog.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// PublishSyncFailures opens one tracking issue listing every failed branch.
func (r *Reporter) PublishSyncFailures(ctx context.Context, project core.Project, tag string, errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	title, body := ProposeDownstreamIssue(tag, errs)
	if err := project.CreateIssue(ctx, title, body); err != nil {
		r.logger.Error("failed to create tracking issue",
			"repo", project.FullName(),
			"tag", tag,
			"error", err,
		)
		return fmt.Errorf("failed to create tracking issue: %w", err)
	}
	r.logger.Info("tracking issue created", "repo", project.FullName(), "tag", tag, "failed_branches", len(errs))
	return nil
}
