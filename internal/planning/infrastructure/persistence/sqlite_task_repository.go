// Package persistence provides SQLite and PostgreSQL implementations of
// the task repository, plus a circuit-breaker wrapper for flaky stores.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// SQLiteTaskRepository is the default single-file store for local mode.
type SQLiteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository opens (or creates) the database file and
// ensures the schema.
func NewSQLiteTaskRepository(path string) (*SQLiteTaskRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	repo := &SQLiteTaskRepository{db: db}
	if err := repo.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteTaskRepository) ensureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			course      TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL,
			status      TEXT NOT NULL,
			due_at      TEXT,
			est_minutes INTEGER NOT NULL DEFAULT 0,
			weight      REAL NOT NULL DEFAULT 1,
			category    TEXT NOT NULL DEFAULT '',
			anchor      INTEGER NOT NULL DEFAULT 0,
			depends_on  TEXT NOT NULL DEFAULT '[]',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_course ON tasks(course);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const sqliteTaskColumns = `id, course, title, status, due_at, est_minutes,
	weight, category, anchor, depends_on, created_at, updated_at`

// Snapshot reads the full task set in id order as one immutable
// snapshot.
func (r *SQLiteTaskRepository) Snapshot(ctx context.Context) (*task.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return task.NewSnapshot(time.Now().UTC(), tasks)
}

// FindByID retrieves a single task.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// Save inserts or updates a task.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	deps, err := json.Marshal(t.DependsOn())
	if err != nil {
		return fmt.Errorf("failed to encode dependencies: %w", err)
	}

	var dueAt *string
	if t.DueAt() != nil {
		s := t.DueAt().UTC().Format(time.RFC3339Nano)
		dueAt = &s
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, course, title, status, due_at, est_minutes,
			weight, category, anchor, depends_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			course = excluded.course,
			title = excluded.title,
			status = excluded.status,
			due_at = excluded.due_at,
			est_minutes = excluded.est_minutes,
			weight = excluded.weight,
			category = excluded.category,
			anchor = excluded.anchor,
			depends_on = excluded.depends_on,
			updated_at = excluded.updated_at`,
		t.ID(), t.Course(), t.Title(), t.Status().String(), dueAt,
		t.EstMinutes(), t.Weight(), t.Category(), boolToInt(t.Anchor()),
		string(deps),
		t.CreatedAt().UTC().Format(time.RFC3339Nano),
		t.UpdatedAt().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Close closes the database.
func (r *SQLiteTaskRepository) Close() error { return r.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*task.Task, error) {
	var (
		id, course, title, status, category string
		dueAt                               *string
		estMinutes, anchor                  int
		weight                              float64
		depsJSON, createdAt, updatedAt      string
	)
	err := row.Scan(&id, &course, &title, &status, &dueAt, &estMinutes,
		&weight, &category, &anchor, &depsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	parsed, err := task.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	var deps []string
	if err := json.Unmarshal([]byte(depsJSON), &deps); err != nil {
		return nil, fmt.Errorf("task %s: failed to decode dependencies: %w", id, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("task %s: invalid created_at: %w", id, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("task %s: invalid updated_at: %w", id, err)
	}
	var due *time.Time
	if dueAt != nil {
		d, err := time.Parse(time.RFC3339Nano, *dueAt)
		if err != nil {
			return nil, fmt.Errorf("task %s: invalid due_at: %w", id, err)
		}
		due = &d
	}

	return task.Rehydrate(task.RehydrateParams{
		ID:         id,
		Course:     course,
		Title:      title,
		Status:     parsed,
		DueAt:      due,
		EstMinutes: estMinutes,
		Weight:     weight,
		Category:   category,
		Anchor:     anchor != 0,
		DependsOn:  deps,
		CreatedAt:  created,
		UpdatedAt:  updated,
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
