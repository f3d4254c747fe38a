package task_test

import (
	"testing"
	"time"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, id, course string) *task.Task {
	t.Helper()
	tk, err := task.New(id, course, "Title for "+id)
	require.NoError(t, err)
	return tk
}

func TestNew(t *testing.T) {
	tk, err := task.New("MATH221-SYLLABUS", "MATH221", "Draft syllabus")
	require.NoError(t, err)

	assert.Equal(t, "MATH221-SYLLABUS", tk.ID())
	assert.Equal(t, "MATH221", tk.Course())
	assert.Equal(t, task.StatusTodo, tk.Status())
	assert.Equal(t, 1.0, tk.Weight())
	assert.Empty(t, tk.DependsOn())
}

func TestNew_Validation(t *testing.T) {
	_, err := task.New("", "MATH221", "x")
	assert.ErrorIs(t, err, task.ErrEmptyID)

	_, err = task.New("T1", "MATH221", "   ")
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
}

func TestTransition_LinearOrder(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")

	require.NoError(t, tk.Transition(task.StatusDoing))
	require.NoError(t, tk.Transition(task.StatusReview))
	require.NoError(t, tk.Transition(task.StatusDone))
	assert.True(t, tk.IsDone())
}

func TestTransition_SkippingStateRejected(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")

	err := tk.Transition(task.StatusDone)
	require.Error(t, err)
	assert.ErrorIs(t, err, task.ErrInvalidTransition)

	var invalid *task.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, task.StatusTodo, invalid.From)
	assert.Equal(t, task.StatusDone, invalid.To)

	// No partial mutation.
	assert.Equal(t, task.StatusTodo, tk.Status())
}

func TestTransition_BackwardRejected(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")
	require.NoError(t, tk.Transition(task.StatusDoing))

	err := tk.Transition(task.StatusTodo)
	assert.ErrorIs(t, err, task.ErrInvalidTransition)
	assert.Equal(t, task.StatusDoing, tk.Status())
}

func TestTransition_DoneToTodoRejected(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")
	require.NoError(t, tk.Transition(task.StatusDoing))
	require.NoError(t, tk.Transition(task.StatusReview))
	require.NoError(t, tk.Transition(task.StatusDone))

	// done → todo must go through Reopen, never a plain transition.
	err := tk.Transition(task.StatusTodo)
	assert.ErrorIs(t, err, task.ErrInvalidTransition)
	assert.True(t, tk.IsDone())
}

func TestReopen(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")
	require.NoError(t, tk.Transition(task.StatusDoing))
	require.NoError(t, tk.Transition(task.StatusReview))
	require.NoError(t, tk.Transition(task.StatusDone))

	require.NoError(t, tk.Reopen())
	assert.Equal(t, task.StatusTodo, tk.Status())
}

func TestReopen_OnlyFromDone(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")

	err := tk.Reopen()
	assert.ErrorIs(t, err, task.ErrInvalidTransition)
}

func TestAddDependency_ReBlocks(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")
	require.NoError(t, tk.Transition(task.StatusDoing))

	require.NoError(t, tk.AddDependency("T2"))

	assert.Equal(t, task.StatusBlocked, tk.Status())
	assert.Equal(t, []string{"T2"}, tk.DependsOn())
}

func TestAddDependency_DoneStaysDone(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")
	require.NoError(t, tk.Transition(task.StatusDoing))
	require.NoError(t, tk.Transition(task.StatusReview))
	require.NoError(t, tk.Transition(task.StatusDone))

	require.NoError(t, tk.AddDependency("T2"))
	assert.True(t, tk.IsDone())
}

func TestAddDependency_Validation(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")

	assert.ErrorIs(t, tk.AddDependency("T1"), task.ErrSelfDependency)
	assert.ErrorIs(t, tk.AddDependency(" "), task.ErrEmptyID)

	require.NoError(t, tk.AddDependency("T2"))
	require.NoError(t, tk.AddDependency("T2")) // idempotent
	assert.Equal(t, []string{"T2"}, tk.DependsOn())
}

func TestRemoveDependency(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")
	require.NoError(t, tk.AddDependency("T3"))
	require.NoError(t, tk.AddDependency("T2"))

	tk.RemoveDependency("T3")
	assert.Equal(t, []string{"T2"}, tk.DependsOn())

	tk.RemoveDependency("absent") // no-op
	assert.Equal(t, []string{"T2"}, tk.DependsOn())
}

func TestSetters_Validation(t *testing.T) {
	tk := mustTask(t, "T1", "MATH221")

	assert.ErrorIs(t, tk.SetEstimate(-5), task.ErrNegativeEstimate)
	assert.ErrorIs(t, tk.SetWeight(0), task.ErrInvalidWeight)
	assert.ErrorIs(t, tk.SetTitle(""), task.ErrEmptyTitle)

	require.NoError(t, tk.SetEstimate(45))
	require.NoError(t, tk.SetWeight(2.5))
	tk.SetCategory("grading")
	tk.SetAnchor(true)

	assert.Equal(t, 45, tk.EstMinutes())
	assert.Equal(t, 2.5, tk.Weight())
	assert.Equal(t, "grading", tk.Category())
	assert.True(t, tk.Anchor())
}

func TestParseStatus(t *testing.T) {
	status, err := task.ParseStatus("Review")
	require.NoError(t, err)
	assert.Equal(t, task.StatusReview, status)

	_, err = task.ParseStatus("bogus")
	assert.ErrorIs(t, err, task.ErrInvalidStatus)
}

func TestRehydrate(t *testing.T) {
	now := time.Now().UTC()
	due := now.Add(48 * time.Hour)

	tk, err := task.Rehydrate(task.RehydrateParams{
		ID:         "T1",
		Course:     "MATH221",
		Title:      "Grade quiz 3",
		Status:     task.StatusReview,
		DueAt:      &due,
		EstMinutes: 30,
		Weight:     1.5,
		Category:   "grading",
		Anchor:     true,
		DependsOn:  []string{"T3", "T2", "T3"},
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	require.NoError(t, err)

	assert.Equal(t, task.StatusReview, tk.Status())
	assert.Equal(t, []string{"T2", "T3"}, tk.DependsOn(), "deps sorted and deduped")
	assert.True(t, tk.HasDependency("T2"))
	assert.False(t, tk.HasDependency("T9"))
}

func TestRehydrate_Invalid(t *testing.T) {
	_, err := task.Rehydrate(task.RehydrateParams{ID: "T1", Status: task.Status(42), Weight: 1})
	assert.ErrorIs(t, err, task.ErrInvalidStatus)

	_, err = task.Rehydrate(task.RehydrateParams{ID: "T1", Status: task.StatusTodo, Weight: 1, DependsOn: []string{"T1"}})
	assert.ErrorIs(t, err, task.ErrSelfDependency)
}

func TestNewSnapshot(t *testing.T) {
	b := mustTask(t, "B", "MATH221")
	a := mustTask(t, "A", "MATH221")
	require.NoError(t, b.AddDependency("A"))

	snap, err := task.NewSnapshot(time.Now(), []*task.Task{b, a})
	require.NoError(t, err)

	tasks := snap.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "A", tasks[0].ID(), "snapshot iterates in id order")
	assert.Equal(t, "B", tasks[1].ID())

	got, ok := snap.Get("B")
	require.True(t, ok)
	assert.Equal(t, "B", got.ID())
}

func TestNewSnapshot_DuplicateID(t *testing.T) {
	a1 := mustTask(t, "A", "MATH221")
	a2 := mustTask(t, "A", "STAT253")

	_, err := task.NewSnapshot(time.Now(), []*task.Task{a1, a2})
	assert.ErrorIs(t, err, task.ErrDuplicateTask)
}

func TestNewSnapshot_DanglingDependency(t *testing.T) {
	a := mustTask(t, "A", "MATH221")
	require.NoError(t, a.AddDependency("GHOST"))

	_, err := task.NewSnapshot(time.Now(), []*task.Task{a})
	assert.ErrorIs(t, err, task.ErrUnknownDependency)
}
