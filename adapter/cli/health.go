package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the dependency graph for cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		health, err := app.GraphHealth.Handle(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(health)
		}

		fmt.Printf("\n  tasks: %d · actionable: %d\n", health.TaskCount, health.ChainHeads)
		if health.DAGOK {
			fmt.Println("  dependency graph: OK")
			fmt.Println()
			return nil
		}

		fmt.Printf("  dependency cycle: %s\n", strings.Join(health.CyclePath, " → "))
		if health.BreakSuggestion != nil {
			fmt.Printf("  suggested fix: nowq task undepend %s %s\n",
				health.BreakSuggestion.From, health.BreakSuggestion.To)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
