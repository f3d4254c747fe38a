package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/commands"
)

var (
	refreshTimebox    int
	refreshK          int
	refreshMinCourses int
	refreshCourses    []string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the Now Queue from the current task set",
	Long: `Recomputes the whole queue: reads a fresh snapshot, analyzes the
dependency graph, scores every actionable task, and selects the best
subset that fits the timebox.

Examples:
  nowq refresh                       # defaults from configuration
  nowq refresh --timebox 90 --k 3    # a short session
  nowq refresh --course MATH221      # one course only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		queue, err := app.RefreshQueue.Handle(cmd.Context(), commands.RefreshQueueCommand{
			TimeboxMinutes: refreshTimebox,
			K:              refreshK,
			MinCourses:     refreshMinCourses,
			Courses:        refreshCourses,
		})
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(queue)
		}
		printQueue(queue)
		return nil
	},
}

func printQueue(queue *commands.NowQueue) {
	fmt.Printf("\n  NOW QUEUE  (%s, %d min, score %.2f)\n",
		queue.Strategy, queue.TotalMinutes, queue.TotalScore)
	fmt.Println(strings.Repeat("=", 64))

	if !queue.DAGOK {
		fmt.Printf("\n  WARNING: dependency cycle: %s\n", strings.Join(queue.CyclePath, " → "))
		fmt.Println("  Run 'nowq health' for a break suggestion.")
	}
	if queue.RelaxedMinCourses {
		fmt.Println("\n  note: course diversity floor could not be met")
	}

	if len(queue.Items) == 0 {
		fmt.Println("\n  Nothing actionable. Run 'nowq list' to see blocked work.")
		fmt.Println()
		return
	}

	for i, item := range queue.Items {
		fmt.Printf("\n  %d. [%s] %s\n", i+1, item.TaskID, item.Title)
		fmt.Printf("     %s · %d min · score %.2f", item.Course, item.EstMinutes, item.Score)
		if item.UnblockCount > 0 {
			fmt.Printf(" · unblocks %d", item.UnblockCount)
		}
		if item.Reason != "score" {
			fmt.Printf(" · %s", item.Reason)
		}
		fmt.Println()
	}
	fmt.Println()
}

func init() {
	refreshCmd.Flags().IntVar(&refreshTimebox, "timebox", 0, "session length in minutes (default from config)")
	refreshCmd.Flags().IntVar(&refreshK, "k", 0, "maximum queue size (default from config)")
	refreshCmd.Flags().IntVar(&refreshMinCourses, "min-courses", 0, "course diversity floor (default from config)")
	refreshCmd.Flags().StringSliceVar(&refreshCourses, "course", nil, "restrict to these courses (repeatable)")
	rootCmd.AddCommand(refreshCmd)
}
