package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/queries"
)

var (
	listCourse string
	listStatus string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with their graph standing",
	Long: `Lists tasks in id order, annotated with what the dependency graph says
about each: whether it is actionable, how many tasks it would unblock,
and whether it sits on a cycle.

Examples:
  nowq list
  nowq list --course MATH221
  nowq list --status blocked`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		rows, err := app.ListTasks.Handle(cmd.Context(), queries.ListTasksQuery{
			Course: listCourse,
			Status: listStatus,
		})
		if err != nil {
			return err
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(rows)
		}

		if len(rows) == 0 {
			fmt.Println("No tasks. Add one with 'nowq task add'.")
			return nil
		}

		fmt.Printf("\n  %-24s %-10s %-8s %-12s %s\n", "id", "course", "status", "due", "notes")
		fmt.Println("  " + strings.Repeat("-", 70))
		for _, row := range rows {
			fmt.Printf("  %-24s %-10s %-8s %-12s %s\n",
				row.TaskID, row.Course, row.Status, formatDue(row.DueAt), rowNotes(row))
		}
		fmt.Println()
		return nil
	},
}

func formatDue(due *time.Time) string {
	if due == nil {
		return "-"
	}
	return due.Local().Format("Jan 02 15:04")
}

func rowNotes(row queries.TaskRow) string {
	var notes []string
	if row.OnCycle {
		notes = append(notes, "ON CYCLE")
	}
	if row.ChainHead {
		notes = append(notes, "actionable")
	}
	if row.UnblockCount > 0 {
		notes = append(notes, fmt.Sprintf("unblocks %d", row.UnblockCount))
	}
	return strings.Join(notes, ", ")
}

func init() {
	listCmd.Flags().StringVar(&listCourse, "course", "", "filter by course")
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (blocked, todo, doing, review, done)")
	rootCmd.AddCommand(listCmd)
}
