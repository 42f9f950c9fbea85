package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevigo/build-warden/internal/config"
	"github.com/sevigo/build-warden/internal/db"
	"github.com/sevigo/build-warden/internal/logger"
	"github.com/sevigo/build-warden/internal/storage"
)

var (
	githubToken string
	outputJSON  bool
	verbose     bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "bw-cli",
	Short: "bw-cli is the command-line interface for Build-Warden.",
	Long: `A CLI for administering the Build-Warden service: approving accounts,
inspecting task results and checking package configurations.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub Token")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := viper.BindPFlag("GITHUB_TOKEN", rootCmd.PersistentFlags().Lookup("github-token")); err != nil {
		slog.Error("Error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("BW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// token returns the GitHub token from the flag, BW_GITHUB_TOKEN or the
// service configuration.
func token(cfg *config.Config) string {
	if t := viper.GetString("GITHUB_TOKEN"); t != "" {
		return t
	}
	return cfg.GitHub.Token
}

func cliLogger(cfg *config.Config) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	lc := cfg.Logging
	lc.Level = "debug"
	return logger.NewLogger(lc, os.Stderr)
}

// openStore connects to the service database. The returned function closes
// the connection.
func openStore() (storage.Store, *config.Config, func(), error) {
	cfg, err := config.Read()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	conn, cleanup, err := db.NewDatabase(&cfg.Database, cliLogger(cfg))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w\n\nTip: Check the database section of config.yaml or BW_DATABASE_* variables", err)
	}
	return storage.NewStore(conn.DB), cfg, cleanup, nil
}
