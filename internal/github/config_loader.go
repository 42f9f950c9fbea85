package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
)

type fileReader interface {
	FileContents(ctx context.Context, path, ref string) ([]byte, error)
}

// ConfigLoader reads the package configuration from the repository an event
// happened in.
type ConfigLoader struct {
	logger *slog.Logger
}

// NewConfigLoader creates a ConfigLoader.
func NewConfigLoader(logger *slog.Logger) *ConfigLoader {
	return &ConfigLoader{logger: logger}
}

// PackageConfig returns the first package config file found at the ref the
// event points to. It returns config.ErrConfigNotFound when none exists.
func (l *ConfigLoader) PackageConfig(ctx context.Context, project core.Project, event *core.Event) (*core.PackageConfig, error) {
	reader, ok := project.(fileReader)
	if !ok {
		return nil, fmt.Errorf("project %s cannot read files", project.FullName())
	}

	ref := configRef(event)
	for _, path := range config.PackageConfigFiles {
		data, err := reader.FileContents(ctx, path, ref)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		pc, err := config.ParsePackageConfig(data)
		if err != nil {
			return nil, fmt.Errorf("invalid %s in %s: %w", path, project.FullName(), err)
		}
		l.logger.Debug("package config loaded", "repo", project.FullName(), "path", path, "ref", ref, "jobs", len(pc.Jobs))
		return pc, nil
	}
	return nil, config.ErrConfigNotFound
}

// configRef picks the revision whose config applies: the pull request head,
// the pushed commit or the released tag. Comments on issues use the default
// branch.
func configRef(event *core.Event) string {
	switch event.Type {
	case core.EventPullRequest, core.EventPullRequestComment, core.EventPush, core.EventCoprBuildEnd:
		return event.HeadSHA
	case core.EventRelease:
		return event.TagName
	default:
		return ""
	}
}
