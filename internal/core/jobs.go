package core

// JobType names a pipeline kind that can be configured for a package.
type JobType string

const (
	JobTypeBuild             JobType = "build"
	JobTypeCoprBuild         JobType = "copr_build"
	JobTypeProductionBuild   JobType = "production_build"
	JobTypeTests             JobType = "tests"
	JobTypeProposeDownstream JobType = "propose_downstream"
)

// JobTrigger is the kind of forge activity a configured job reacts to.
type JobTrigger string

const (
	TriggerPullRequest JobTrigger = "pull_request"
	TriggerCommit      JobTrigger = "commit"
	TriggerRelease     JobTrigger = "release"
)

// JobMetadata carries the per-job target lists.
type JobMetadata struct {
	// Targets are build chroots, e.g. "fedora-rawhide-x86_64".
	Targets []string `yaml:"targets" json:"targets,omitempty"`
	// DistGitBranches are downstream branches a release is synced to.
	DistGitBranches []string `yaml:"dist_git_branches" json:"dist_git_branches,omitempty"`
	// Branch restricts commit triggers to a single upstream branch.
	Branch string `yaml:"branch" json:"branch,omitempty"`
}

// JobConfig is one entry of the jobs list in a package configuration.
type JobConfig struct {
	Type     JobType     `yaml:"job" json:"job"`
	Trigger  JobTrigger  `yaml:"trigger" json:"trigger"`
	Metadata JobMetadata `yaml:"metadata" json:"metadata"`
}

// IsBuild reports whether the job produces a Copr build.
func (j *JobConfig) IsBuild() bool {
	return j.Type == JobTypeBuild || j.Type == JobTypeCoprBuild
}

// PackageConfig represents the structure of the .packit.yaml file.
type PackageConfig struct {
	SpecfilePath          string      `yaml:"specfile_path" json:"specfile_path,omitempty"`
	UpstreamPackageName   string      `yaml:"upstream_package_name" json:"upstream_package_name,omitempty"`
	DownstreamPackageName string      `yaml:"downstream_package_name" json:"downstream_package_name,omitempty"`
	Jobs                  []JobConfig `yaml:"jobs" json:"jobs"`
}

// JobsForTrigger returns the configured jobs matching trigger, in config order.
func (p *PackageConfig) JobsForTrigger(trigger JobTrigger) []*JobConfig {
	var matching []*JobConfig
	for i := range p.Jobs {
		if p.Jobs[i].Trigger == trigger {
			matching = append(matching, &p.Jobs[i])
		}
	}
	return matching
}

// HasJob reports whether any configured job satisfies match.
func (p *PackageConfig) HasJob(match func(*JobConfig) bool) bool {
	for i := range p.Jobs {
		if match(&p.Jobs[i]) {
			return true
		}
	}
	return false
}

// GetBranches de-duplicates branches keeping their order and falls back to
// def when none are configured.
func GetBranches(branches []string, def string) []string {
	if len(branches) == 0 {
		return []string{def}
	}
	seen := make(map[string]struct{}, len(branches))
	out := make([]string, 0, len(branches))
	for _, b := range branches {
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}
