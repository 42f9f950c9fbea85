package github

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/mocks"
)

func TestStatusReporter_ReportStatusToAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	project := mocks.NewMockProject(ctrl)
	project.EXPECT().FullName().Return("acme/widget").AnyTimes()

	contexts := []string{
		StatusContext("rpm-build", "fedora-35-x86_64"),
		StatusContext("rpm-build", "fedora-36-x86_64"),
		StatusContext("rpm-build", "epel-9-x86_64"),
	}
	project.EXPECT().
		SetCommitStatus(gomock.Any(), "abc", core.StateFailure, "https://docs", "denied", "packit/rpm-build-fedora-35-x86_64").
		Return(errors.New("rate limited"))
	project.EXPECT().
		SetCommitStatus(gomock.Any(), "abc", core.StateFailure, "https://docs", "denied", "packit/rpm-build-fedora-36-x86_64").
		Return(nil)
	project.EXPECT().
		SetCommitStatus(gomock.Any(), "abc", core.StateFailure, "https://docs", "denied", "packit/rpm-build-epel-9-x86_64").
		Return(nil)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewStatusReporter(project, "abc", contexts, logger).
		ReportStatusToAll(context.Background(), "denied", core.StateFailure, "https://docs")
}

func TestStatusReporter_NoCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	project := mocks.NewMockProject(ctrl)
	project.EXPECT().FullName().Return("acme/widget").AnyTimes()
	project.EXPECT().SetCommitStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	NewStatusReporter(project, "", []string{"packit/x"}, logger).
		ReportStatusToAll(context.Background(), "Task accepted", core.StatePending, "")
}

func TestTruncateDescription(t *testing.T) {
	short := "Only users with write permissions"
	assert.Equal(t, short, truncateDescription(short))

	long := make([]rune, 200)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateDescription(string(long))
	assert.Len(t, []rune(got), maxDescriptionLen)
	assert.True(t, len(got) > 3 && got[len(got)-3:] == "...")
}
