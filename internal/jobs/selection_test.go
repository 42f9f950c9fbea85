package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/handlers"
)

func TestCommandsFromComment(t *testing.T) {
	tests := []struct {
		name    string
		comment string
		want    []string
	}{
		{name: "empty", comment: "   ", want: nil},
		{name: "single command", comment: "/packit build", want: []string{"build"}},
		{name: "surrounding whitespace", comment: "\n  /packit   copr-build  \n", want: []string{"copr-build"}},
		{name: "mark without command is skipped", comment: "/packit\n/packit test", want: []string{"test"}},
		{name: "first command wins", comment: "LGTM\n/packit propose-update\n/packit build", want: []string{"propose-update"}},
		{name: "arguments are capped", comment: "/packit build one two three four", want: []string{"build", "one", "two"}},
		{name: "other bots are ignored", comment: "/retest all", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandsFromComment(tt.comment))
		})
	}
}

func handlerNames(regs []*handlers.Registration) []handlers.TaskName {
	var names []handlers.TaskName
	for _, r := range regs {
		names = append(names, r.Name)
	}
	return names
}

func TestHandlersForEvent(t *testing.T) {
	reg := handlers.DefaultRegistry()

	pkg := &core.PackageConfig{Jobs: []core.JobConfig{
		{Type: core.JobTypeCoprBuild, Trigger: core.TriggerPullRequest},
		{Type: core.JobTypeTests, Trigger: core.TriggerPullRequest},
		{Type: core.JobTypeProductionBuild, Trigger: core.TriggerCommit},
		{Type: core.JobTypeProposeDownstream, Trigger: core.TriggerRelease},
	}}

	tests := []struct {
		name  string
		event *core.Event
		want  []handlers.TaskName
	}{
		{
			name:  "pull request",
			event: &core.Event{Type: core.EventPullRequest},
			want:  []handlers.TaskName{handlers.TaskCoprBuild},
		},
		{
			name:  "push",
			event: &core.Event{Type: core.EventPush},
			want:  []handlers.TaskName{handlers.TaskKojiBuild},
		},
		{
			name:  "release",
			event: &core.Event{Type: core.EventRelease},
			want:  []handlers.TaskName{handlers.TaskProposeDownstream},
		},
		{
			name:  "test comment",
			event: &core.Event{Type: core.EventPullRequestComment, Comment: "/packit test"},
			want:  []handlers.TaskName{handlers.TaskTestingFarm},
		},
		{
			name:  "build comment",
			event: &core.Event{Type: core.EventPullRequestComment, Comment: "/packit build"},
			want:  []handlers.TaskName{handlers.TaskCoprBuild},
		},
		{
			name:  "unknown comment",
			event: &core.Event{Type: core.EventPullRequestComment, Comment: "/packit dance"},
			want:  nil,
		},
		{
			name:  "issue comment",
			event: &core.Event{Type: core.EventIssueComment, Comment: "/packit propose-downstream"},
			want:  []handlers.TaskName{handlers.TaskProposeDownstream},
		},
		{
			name: "build end",
			event: &core.Event{
				Type:       core.EventCoprBuildEnd,
				TriggerRef: core.TriggerRef{Trigger: core.TriggerPullRequest, Key: "acme/widget#1"},
			},
			want: []handlers.TaskName{handlers.TaskTestingFarm},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handlerNames(HandlersForEvent(reg, tt.event, pkg)))
		})
	}
}

func TestConfigsForHandler(t *testing.T) {
	reg := handlers.DefaultRegistry()
	copr, _ := reg.Get(handlers.TaskCoprBuild)
	event := &core.Event{Type: core.EventPullRequest}

	t.Run("configured jobs win", func(t *testing.T) {
		pkg := &core.PackageConfig{Jobs: []core.JobConfig{
			{Type: core.JobTypeTests, Trigger: core.TriggerPullRequest},
			{Type: core.JobTypeCoprBuild, Trigger: core.TriggerPullRequest},
			{Type: core.JobTypeBuild, Trigger: core.TriggerCommit},
		}}
		got := ConfigsForHandler(copr, event, pkg)
		if assert.Len(t, got, 1) {
			assert.Same(t, &pkg.Jobs[1], got[0])
		}
	})

	t.Run("falls back to requiring jobs", func(t *testing.T) {
		pkg := &core.PackageConfig{Jobs: []core.JobConfig{
			{Type: core.JobTypeTests, Trigger: core.TriggerPullRequest, Metadata: core.JobMetadata{Targets: []string{"a"}}},
			{Type: core.JobTypeTests, Trigger: core.TriggerPullRequest, Metadata: core.JobMetadata{Targets: []string{"b"}}},
		}}
		got := ConfigsForHandler(copr, event, pkg)
		if assert.Len(t, got, 2) {
			assert.Equal(t, []string{"a"}, got[0].Metadata.Targets)
			assert.Equal(t, []string{"b"}, got[1].Metadata.Targets)
		}
	})

	t.Run("nothing for other triggers", func(t *testing.T) {
		pkg := &core.PackageConfig{Jobs: []core.JobConfig{
			{Type: core.JobTypeCoprBuild, Trigger: core.TriggerRelease},
		}}
		assert.Empty(t, ConfigsForHandler(copr, event, pkg))
	})
}
