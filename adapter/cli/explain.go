package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/queries"
)

var explainCmd = &cobra.Command{
	Use:   "explain <task-id>",
	Short: "Show the full scoring breakdown for one task",
	Long: `Explains why a task ranks where it does: every scoring factor with its
raw value, weight, and contribution, plus the graph facts. For a blocked
task it also lists the exact set of tasks to finish to make it
actionable.

Examples:
  nowq explain MATH221-WEEK1
  nowq explain STAT253-GRADING --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		exp, err := app.ExplainTask.Handle(cmd.Context(), queries.ExplainTaskQuery{TaskID: args[0]})
		if err != nil {
			return err
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(exp)
		}
		printExplanation(exp)
		return nil
	},
}

func printExplanation(exp *queries.TaskExplanation) {
	fmt.Printf("\n  [%s] %s\n", exp.TaskID, exp.Title)
	fmt.Printf("  %s · %s · score %.2f\n", exp.Course, exp.Status, exp.Score.Total)
	fmt.Println(strings.Repeat("=", 64))

	fmt.Printf("\n  %-12s %10s %10s %14s\n", "factor", "raw", "weight", "contribution")
	for _, f := range exp.Score.Factors {
		fmt.Printf("  %-12s %10.2f %10.2f %14.2f\n", f.Name, f.Raw, f.Weight, f.Contribution)
	}

	fmt.Println()
	switch {
	case exp.OnCycle:
		fmt.Println("  On a dependency cycle: cannot become actionable.")
		fmt.Println("  Run 'nowq health' for a break suggestion.")
	case exp.ChainHead:
		fmt.Println("  Actionable now (all dependencies done).")
	case exp.Cut.Unreachable:
		fmt.Println("  Blocked behind a dependency cycle: no finite set of")
		fmt.Println("  completions unblocks this task.")
	default:
		fmt.Printf("  Blocked at depth %d. Finish these to unblock:\n", exp.Depth)
		for _, id := range exp.Cut.Blockers {
			fmt.Printf("    - %s\n", id)
		}
	}
	if exp.UnblockCount > 0 {
		fmt.Printf("  Completing this task unblocks %d task(s).\n", exp.UnblockCount)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
