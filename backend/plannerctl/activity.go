package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:   "activity <task-id>",
	Short: "Show a task's activity log, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivity,
}

func init() {
	rootCmd.AddCommand(activityCmd)
}

func runActivity(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	app, _, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	records, err := app.Activity.ForTask(cmd.Context(), id)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), records)
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No activity for task %d.\n", id)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tTITLE\tFROM\tTO")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, r.Title, dash(string(r.OldBucket)), dash(string(r.NewBucket)))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
