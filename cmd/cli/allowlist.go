package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/build-warden/internal/allowlist"
	"github.com/sevigo/build-warden/internal/core"
)

var allowlistStatus string

var allowlistCmd = &cobra.Command{
	Use:   "allowlist",
	Short: "Inspect and approve accounts allowed to use Build-Warden",
}

var allowlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allowlist entries",
	Long: `List allowlist entries, optionally filtered by status.

Examples:
  bw-cli allowlist list
  bw-cli allowlist list --status waiting`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		store, _, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		entries, err := store.ListAllowlist(ctx, core.AllowlistStatus(allowlistStatus))
		if err != nil {
			return fmt.Errorf("failed to list allowlist: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(entries)
		}
		if len(entries) == 0 {
			dimColor.Println("No allowlist entries.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ACCOUNT\tSTATUS\tSENDER\tUPDATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Account, statusLabel(e.Status), e.Sender, e.UpdatedAt.Format(time.RFC822))
		}
		return w.Flush()
	},
}

var allowlistApproveCmd = &cobra.Command{
	Use:   "approve <account>",
	Short: "Approve an account manually",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, cfg, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		svc := allowlist.NewService(store, nil, cliLogger(cfg))
		if err := svc.ApproveManually(ctx, args[0]); err != nil {
			return fmt.Errorf("failed to approve %s: %w", args[0], err)
		}
		successColor.Printf("✓ Account %s approved\n", args[0])
		return nil
	},
}

func statusLabel(s core.AllowlistStatus) string {
	switch s {
	case core.AllowlistApproved, core.AllowlistManual:
		return successColor.Sprint(s)
	case core.AllowlistWaiting:
		return warnColor.Sprint(s)
	default:
		return string(s)
	}
}

func init() { //nolint:gochecknoinits // Cobra command registration
	allowlistListCmd.Flags().StringVar(&allowlistStatus, "status", "", "Only show entries with this status")
	allowlistCmd.AddCommand(allowlistListCmd, allowlistApproveCmd)
	rootCmd.AddCommand(allowlistCmd)
}
