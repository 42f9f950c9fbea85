package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/core"
	"github.com/sevigo/build-warden/internal/github"
	"github.com/sevigo/build-warden/internal/gitutil"
	"github.com/sevigo/build-warden/internal/handlers"
	"github.com/sevigo/build-warden/internal/jobs"
)

var checkRef string

var checkConfigCmd = &cobra.Command{
	Use:   "check-config <repository>",
	Short: "Validate a repository's package config and show which handlers it enables",
	Long: `Fetch the package config (.packit.yaml) of a repository, validate it and
show which handlers each kind of event would dispatch.

Examples:
  bw-cli check-config acme/widget
  bw-cli check-config --ref v1.2.0 acme/widget`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckConfig,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	checkConfigCmd.Flags().StringVar(&checkRef, "ref", "", "Git ref to read the config from (default branch if empty)")
	rootCmd.AddCommand(checkConfigCmd)
}

func runCheckConfig(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	owner, repo, err := gitutil.ParseRepository(args[0])
	if err != nil {
		return fmt.Errorf("%w\n\nExpected format: owner/repo or https://github.com/owner/repo", err)
	}
	fullName := owner + "/" + repo

	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	tok := token(cfg)
	if tok == "" {
		return fmt.Errorf("GitHub token is not set\n\nTip: Pass --github-token or set BW_GITHUB_TOKEN")
	}
	logger := cliLogger(cfg)

	project := github.NewProject(github.NewPATClient(ctx, tok, logger), owner, repo)
	event := &core.Event{
		Type:         core.EventPush,
		RepoOwner:    owner,
		RepoName:     repo,
		RepoFullName: fullName,
		HeadSHA:      checkRef,
	}

	titleColor.Printf("Package config of %s\n", fullName)
	pkg, err := github.NewConfigLoader(logger).PackageConfig(ctx, project, event)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		warnColor.Println("No packit config found in the repository.")
		return nil
	case err != nil:
		errorColor.Printf("✗ %v\n", err)
		return fmt.Errorf("invalid package config")
	}
	successColor.Printf("✓ Valid config with %d jobs\n\n", len(pkg.Jobs))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "JOB\tTRIGGER\tTARGETS\tBRANCHES")
	for _, job := range pkg.Jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			job.Type,
			job.Trigger,
			strings.Join(job.Metadata.Targets, ","),
			strings.Join(job.Metadata.DistGitBranches, ","),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	registry := handlers.DefaultRegistry()
	for _, t := range []core.EventType{core.EventPullRequest, core.EventPush, core.EventRelease} {
		var names []string
		for _, reg := range jobs.HandlersForEvent(registry, &core.Event{Type: t}, pkg) {
			names = append(names, string(reg.Name))
		}
		if len(names) == 0 {
			dimColor.Printf("  %-14s -\n", t)
			continue
		}
		fmt.Printf("  %-14s %s\n", t, strings.Join(names, ", "))
	}
	return nil
}
