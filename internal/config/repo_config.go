package config

import (
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/build-warden/internal/core"
)

// PackageConfigFiles are the file names looked up in a repository, in order.
var PackageConfigFiles = []string{".packit.yaml", ".packit.yml", "packit.yaml", "packit.yml"}

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParsing  = errors.New("config parsing failed")
)

var knownJobTypes = []core.JobType{
	core.JobTypeBuild,
	core.JobTypeCoprBuild,
	core.JobTypeProductionBuild,
	core.JobTypeTests,
	core.JobTypeProposeDownstream,
}

var knownTriggers = []core.JobTrigger{
	core.TriggerPullRequest,
	core.TriggerCommit,
	core.TriggerRelease,
}

// ParsePackageConfig parses the contents of a .packit.yaml file.
func ParsePackageConfig(data []byte) (*core.PackageConfig, error) {
	var pc core.PackageConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigParsing, err)
	}
	for i, job := range pc.Jobs {
		if !slices.Contains(knownJobTypes, job.Type) {
			return nil, fmt.Errorf("%w: job %d has unknown type %q", ErrConfigParsing, i, job.Type)
		}
		if !slices.Contains(knownTriggers, job.Trigger) {
			return nil, fmt.Errorf("%w: job %d has unknown trigger %q", ErrConfigParsing, i, job.Trigger)
		}
	}
	return &pc, nil
}
