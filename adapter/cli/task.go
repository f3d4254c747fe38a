package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/commands"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks and their dependencies",
}

var (
	addCourse   string
	addDue      string
	addEstimate int
	addWeight   float64
	addCategory string
	addAnchor   bool
	addDeps     []string
)

var taskAddCmd = &cobra.Command{
	Use:   "add <id> <title>",
	Short: "Add a task",
	Long: `Adds a task. Ids are stable slugs you pick yourself, conventionally
COURSE-TOPIC.

Examples:
  nowq task add MATH221-SYLLABUS "Write the syllabus" --course MATH221 --est 45 --category setup
  nowq task add MATH221-WEEK1 "Build week 1" --course MATH221 --depends-on MATH221-SYLLABUS`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		var due *time.Time
		if addDue != "" {
			parsed, err := parseDue(addDue)
			if err != nil {
				return err
			}
			due = &parsed
		}

		created, err := app.CreateTask.Handle(cmd.Context(), commands.CreateTaskCommand{
			ID:         args[0],
			Course:     addCourse,
			Title:      args[1],
			DueAt:      due,
			EstMinutes: addEstimate,
			Weight:     addWeight,
			Category:   addCategory,
			Anchor:     addAnchor,
			DependsOn:  addDeps,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Task added: [%s] %s (%s)\n", created.ID(), created.Title(), created.Status())
		return nil
	},
}

// parseDue accepts a date or a full timestamp. A bare date means end of
// that day in local time.
func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return d.Add(24*time.Hour - time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("invalid due date %q (want YYYY-MM-DD or RFC 3339)", s)
}

func transitionCommand(use, short string, to task.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp()
			if app == nil {
				return fmt.Errorf("application not initialized")
			}
			err := app.TransitionTask.Handle(cmd.Context(), commands.TransitionTaskCommand{
				TaskID: args[0],
				To:     to,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Task %s: %s\n", args[0], to)
			return nil
		},
	}
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <task-id>",
	Short: "Move a done task back to todo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		if err := app.ReopenTask.Handle(cmd.Context(), commands.ReopenTaskCommand{TaskID: args[0]}); err != nil {
			return err
		}
		fmt.Printf("Task %s reopened. Dependents already done stay done.\n", args[0])
		return nil
	},
}

var taskDependCmd = &cobra.Command{
	Use:   "depend <task-id> <depends-on-id>",
	Short: "Add a dependency edge (re-blocks the task)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		err := app.Dependencies.HandleAdd(cmd.Context(), commands.AddDependencyCommand{
			TaskID:      args[0],
			DependsOnID: args[1],
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s now depends on %s\n", args[0], args[1])
		return nil
	},
}

var taskUndependCmd = &cobra.Command{
	Use:   "undepend <task-id> <depends-on-id>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		err := app.Dependencies.HandleRemove(cmd.Context(), commands.RemoveDependencyCommand{
			TaskID:      args[0],
			DependsOnID: args[1],
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s no longer depends on %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVar(&addCourse, "course", "", "course the task belongs to")
	taskAddCmd.Flags().StringVar(&addDue, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	taskAddCmd.Flags().IntVar(&addEstimate, "est", 0, "estimated minutes")
	taskAddCmd.Flags().Float64Var(&addWeight, "weight", 0, "weight for cycle break suggestions")
	taskAddCmd.Flags().StringVar(&addCategory, "category", "", "scoring category (setup, content, communication, grading, administrative)")
	taskAddCmd.Flags().BoolVar(&addAnchor, "anchor", false, "pin elevated priority")
	taskAddCmd.Flags().StringSliceVar(&addDeps, "depends-on", nil, "dependency task ids (repeatable)")

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(transitionCommand("start", "Move a task to doing", task.StatusDoing))
	taskCmd.AddCommand(transitionCommand("review", "Move a task to review", task.StatusReview))
	taskCmd.AddCommand(transitionCommand("done", "Move a task to done", task.StatusDone))
	taskCmd.AddCommand(transitionCommand("unblock", "Move a blocked task to todo", task.StatusTodo))
	taskCmd.AddCommand(taskReopenCmd)
	taskCmd.AddCommand(taskDependCmd)
	taskCmd.AddCommand(taskUndependCmd)
	rootCmd.AddCommand(taskCmd)
}
