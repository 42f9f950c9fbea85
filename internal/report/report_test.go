package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/build-warden/internal/mocks"
)

func TestRows_SortedAndSingleLine(t *testing.T) {
	rows := Rows(map[string]string{
		"f35":    "bad spec\nline 2",
		"f34":    "timeout",
		"master": "ok?",
	})
	require.Len(t, rows, 3)
	assert.Equal(t, []Row{
		{Target: "f34", Error: "timeout"},
		{Target: "f35", Error: "bad spec line 2"},
		{Target: "master", Error: "ok?"},
	}, rows)
}

func TestProposeDownstreamIssue(t *testing.T) {
	title, body := ProposeDownstreamIssue("1.2.0", map[string]string{"f35": "push rejected"})

	assert.Equal(t, "[packit] Propose update failed for release 1.2.0", title)
	assert.Contains(t, body, "| dist-git branch | error |\n")
	assert.Contains(t, body, "| --------------- | ----- |\n")
	assert.Contains(t, body, "| `f35` | `push rejected` |\n")
	assert.Contains(t, body, "(`/packit propose-update`)")
}

func TestProposeDownstreamIssue_Deterministic(t *testing.T) {
	branches := []string{"rawhide", "f35", "f34", "epel9", "f36"}

	forward := map[string]string{}
	for _, b := range branches {
		forward[b] = "sync of " + b + " failed\nsee logs"
	}
	backward := map[string]string{}
	for i := len(branches) - 1; i >= 0; i-- {
		backward[branches[i]] = "sync of " + branches[i] + " failed\nsee logs"
	}

	title1, body1 := ProposeDownstreamIssue("0.3.0", forward)
	for range 20 {
		title2, body2 := ProposeDownstreamIssue("0.3.0", backward)
		assert.Equal(t, title1, title2)
		assert.Equal(t, body1, body2)
	}
}

func TestReporter_PublishSyncFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	project := mocks.NewMockProject(ctrl)
	r := NewReporter(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("no errors, no issue", func(t *testing.T) {
		require.NoError(t, r.PublishSyncFailures(context.Background(), project, "1.0", nil))
	})

	t.Run("one issue for all branches", func(t *testing.T) {
		project.EXPECT().FullName().Return("acme/widget").AnyTimes()
		project.EXPECT().
			CreateIssue(gomock.Any(), "[packit] Propose update failed for release 1.0", gomock.Any()).
			Return(nil)
		require.NoError(t, r.PublishSyncFailures(context.Background(), project, "1.0",
			map[string]string{"f34": "a", "f35": "b"}))
	})

	t.Run("issue failure is returned", func(t *testing.T) {
		project.EXPECT().CreateIssue(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("forbidden"))
		err := r.PublishSyncFailures(context.Background(), project, "1.0", map[string]string{"f34": "a"})
		assert.ErrorContains(t, err, "forbidden")
	})
}
