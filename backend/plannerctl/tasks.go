package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"planner-board/backend/planner-service/models"

	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and move tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks grouped by bucket",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksMoveCmd = &cobra.Command{
	Use:   "move <task-id> <bucket>",
	Short: "Move a task to another bucket",
	Args:  cobra.ExactArgs(2),
	RunE:  runTasksMove,
}

var tasksListBucket string

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksMoveCmd)
	tasksListCmd.Flags().StringVarP(&tasksListBucket, "bucket", "b", "", "Only show tasks in this bucket")
}

func runTasksList(cmd *cobra.Command, args []string) error {
	var only models.Bucket
	if tasksListBucket != "" {
		b, err := models.ParseBucket(tasksListBucket)
		if err != nil {
			return err
		}
		only = b
	}

	app, _, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	columns, err := app.Board.Columns(cmd.Context())
	if err != nil {
		return err
	}

	var tasks []models.Task
	for _, col := range columns {
		if only != "" && col.Bucket != only {
			continue
		}
		tasks = append(tasks, col.Tasks...)
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), tasks)
	}
	return printTasks(cmd.OutOrStdout(), tasks)
}

func printTasks(out io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBUCKET\tPRIORITY\tSTATUS\tDUE\tASSIGNEE\tCHECKLIST\tTITLE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Format("2006-01-02")
		}
		assignee := t.AssignedTo
		if assignee == "" {
			assignee = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Bucket, t.Priority, t.Status, due, assignee, checklistSummary(t.Checklist), t.Title)
	}
	return w.Flush()
}

func checklistSummary(items []models.ChecklistItem) string {
	if len(items) == 0 {
		return "-"
	}
	done := 0
	for _, item := range items {
		if item.Done {
			done++
		}
	}
	return fmt.Sprintf("%d/%d", done, len(items))
}

func runTasksMove(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	bucket, err := models.ParseBucket(args[1])
	if err != nil {
		return err
	}

	app, _, _, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tasks.MoveBucket(cmd.Context(), id, bucket); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Moved task %d to %s\n", id, bucket)
	return nil
}

func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidTaskID, s)
	}
	return id, nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
