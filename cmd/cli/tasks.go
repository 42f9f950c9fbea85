package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/build-warden/internal/core"
)

var taskLimit int

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect units of work processed by Build-Warden",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recently updated tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		store, _, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		records, err := store.ListTaskRecords(ctx, taskLimit)
		if err != nil {
			return fmt.Errorf("failed to retrieve tasks: %w", err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}
		if len(records) == 0 {
			dimColor.Println("No tasks recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TASK ID\tNAME\tSTATE\tATTEMPT\tLAST UPDATED")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				rec.TaskID,
				rec.TaskName,
				stateLabel(rec),
				rec.Attempt,
				rec.UpdatedAt.Format(time.RFC822),
			)
		}
		return w.Flush()
	},
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show the state and result details of a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, _, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := store.GetTaskRecord(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to retrieve task %s: %w", args[0], err)
		}

		if outputJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rec)
		}

		titleColor.Printf("Task %s\n", rec.TaskID)
		fmt.Printf("  Name:    %s\n", rec.TaskName)
		fmt.Printf("  State:   %s\n", stateLabel(*rec))
		fmt.Printf("  Attempt: %d\n", rec.Attempt)
		fmt.Printf("  Updated: %s\n", rec.UpdatedAt.Format(time.RFC1123))
		if len(rec.Details) > 0 {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, rec.Details, "  ", "  "); err != nil {
				pretty.Reset()
				pretty.Write(rec.Details)
			}
			dimColor.Printf("  Details: %s\n", pretty.String())
		}
		return nil
	},
}

func stateLabel(rec core.TaskRecord) string {
	switch rec.State {
	case core.TaskSucceeded:
		return successColor.Sprint(rec.State)
	case core.TaskFailed:
		return errorColor.Sprint(rec.State)
	case core.TaskAwaitingRetry, core.TaskPending, core.TaskRunning:
		return warnColor.Sprint(rec.State)
	default:
		return string(rec.State)
	}
}

func init() { //nolint:gochecknoinits // Cobra command registration
	tasksListCmd.Flags().IntVarP(&taskLimit, "limit", "n", 20, "Maximum number of tasks to show")
	tasksCmd.AddCommand(tasksListCmd, tasksShowCmd)
	rootCmd.AddCommand(tasksCmd)
}
