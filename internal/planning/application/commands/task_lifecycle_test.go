package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjohnson-47/nowqueue/internal/planning/application/commands"
	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

func TestTransitionTaskHandler(t *testing.T) {
	t.Run("applies a valid transition", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30))
		handler := commands.NewTransitionTaskHandler(repo, nil)

		err := handler.Handle(context.Background(), commands.TransitionTaskCommand{
			TaskID: "A", To: task.StatusDoing,
		})
		require.NoError(t, err)

		saved, err := repo.FindByID(context.Background(), "A")
		require.NoError(t, err)
		assert.Equal(t, task.StatusDoing, saved.Status())
	})

	t.Run("rejects a skip transition", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30))
		handler := commands.NewTransitionTaskHandler(repo, nil)

		err := handler.Handle(context.Background(), commands.TransitionTaskCommand{
			TaskID: "A", To: task.StatusDone,
		})
		assert.ErrorIs(t, err, task.ErrInvalidTransition)
	})

	t.Run("unknown task", func(t *testing.T) {
		handler := commands.NewTransitionTaskHandler(newMemoryRepo(), nil)

		err := handler.Handle(context.Background(), commands.TransitionTaskCommand{
			TaskID: "MISSING", To: task.StatusDoing,
		})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}

func TestReopenTaskHandler(t *testing.T) {
	t.Run("reopens a done task", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusDone, 30))
		handler := commands.NewReopenTaskHandler(repo, nil)

		err := handler.Handle(context.Background(), commands.ReopenTaskCommand{TaskID: "A"})
		require.NoError(t, err)

		saved, err := repo.FindByID(context.Background(), "A")
		require.NoError(t, err)
		assert.Equal(t, task.StatusTodo, saved.Status())
	})

	t.Run("rejects reopening a task that is not done", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusDoing, 30))
		handler := commands.NewReopenTaskHandler(repo, nil)

		err := handler.Handle(context.Background(), commands.ReopenTaskCommand{TaskID: "A"})
		assert.ErrorIs(t, err, task.ErrInvalidTransition)
	})
}

func TestDependencyHandler(t *testing.T) {
	t.Run("add re-blocks the task", func(t *testing.T) {
		repo := newMemoryRepo(
			makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30),
			makeTask(t, "B", "MATH221", "content", task.StatusTodo, 30),
		)
		handler := commands.NewDependencyHandler(repo, nil)

		err := handler.HandleAdd(context.Background(), commands.AddDependencyCommand{
			TaskID: "B", DependsOnID: "A",
		})
		require.NoError(t, err)

		saved, err := repo.FindByID(context.Background(), "B")
		require.NoError(t, err)
		assert.Equal(t, task.StatusBlocked, saved.Status())
		assert.Equal(t, []string{"A"}, saved.DependsOn())
	})

	t.Run("add rejects an unknown target", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30))
		handler := commands.NewDependencyHandler(repo, nil)

		err := handler.HandleAdd(context.Background(), commands.AddDependencyCommand{
			TaskID: "A", DependsOnID: "GHOST",
		})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})

	t.Run("remove leaves status untouched", func(t *testing.T) {
		repo := newMemoryRepo(
			makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30),
			makeTask(t, "B", "MATH221", "content", task.StatusBlocked, 30, "A"),
		)
		handler := commands.NewDependencyHandler(repo, nil)

		err := handler.HandleRemove(context.Background(), commands.RemoveDependencyCommand{
			TaskID: "B", DependsOnID: "A",
		})
		require.NoError(t, err)

		saved, err := repo.FindByID(context.Background(), "B")
		require.NoError(t, err)
		assert.Equal(t, task.StatusBlocked, saved.Status())
		assert.Empty(t, saved.DependsOn())
	})
}

func TestCreateTaskHandler(t *testing.T) {
	t.Run("creates a task", func(t *testing.T) {
		repo := newMemoryRepo()
		handler := commands.NewCreateTaskHandler(repo, nil)

		created, err := handler.Handle(context.Background(), commands.CreateTaskCommand{
			ID: "MATH221-SYLLABUS", Course: "MATH221", Title: "Write the syllabus",
			EstMinutes: 45, Category: "setup",
		})
		require.NoError(t, err)
		assert.Equal(t, task.StatusTodo, created.Status())
		assert.Equal(t, 45, created.EstMinutes())

		_, err = repo.FindByID(context.Background(), "MATH221-SYLLABUS")
		assert.NoError(t, err)
	})

	t.Run("rejects a duplicate id", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30))
		handler := commands.NewCreateTaskHandler(repo, nil)

		_, err := handler.Handle(context.Background(), commands.CreateTaskCommand{
			ID: "A", Course: "MATH221", Title: "duplicate",
		})
		assert.ErrorIs(t, err, task.ErrDuplicateTask)
	})

	t.Run("dependencies block the new task", func(t *testing.T) {
		repo := newMemoryRepo(makeTask(t, "A", "MATH221", "setup", task.StatusTodo, 30))
		handler := commands.NewCreateTaskHandler(repo, nil)

		created, err := handler.Handle(context.Background(), commands.CreateTaskCommand{
			ID: "B", Course: "MATH221", Title: "follows A", DependsOn: []string{"A"},
		})
		require.NoError(t, err)
		assert.Equal(t, task.StatusBlocked, created.Status())
	})

	t.Run("rejects unknown dependency targets", func(t *testing.T) {
		handler := commands.NewCreateTaskHandler(newMemoryRepo(), nil)

		_, err := handler.Handle(context.Background(), commands.CreateTaskCommand{
			ID: "B", Course: "MATH221", Title: "dangling", DependsOn: []string{"GHOST"},
		})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	})
}
