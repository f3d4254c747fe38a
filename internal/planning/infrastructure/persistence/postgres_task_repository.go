package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jjohnson-47/nowqueue/internal/planning/domain/task"
)

// PostgresTaskRepository is the shared-deployment store.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository connects and ensures the schema.
func NewPostgresTaskRepository(ctx context.Context, databaseURL string) (*PostgresTaskRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresTaskRepository{pool: pool}
	if err := repo.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func (r *PostgresTaskRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			course      TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL,
			status      TEXT NOT NULL,
			due_at      TIMESTAMPTZ,
			est_minutes INTEGER NOT NULL DEFAULT 0,
			weight      DOUBLE PRECISION NOT NULL DEFAULT 1,
			category    TEXT NOT NULL DEFAULT '',
			anchor      BOOLEAN NOT NULL DEFAULT FALSE,
			depends_on  TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_course ON tasks(course);
		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const postgresTaskColumns = `id, course, title, status, due_at, est_minutes,
	weight, category, anchor, depends_on, created_at, updated_at`

// Snapshot reads the full task set in id order as one immutable
// snapshot.
func (r *PostgresTaskRepository) Snapshot(ctx context.Context) (*task.Snapshot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+postgresTaskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanPostgresTask(rows)
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
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+postgresTaskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPostgresTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// Save inserts or updates a task.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, course, title, status, due_at, est_minutes,
			weight, category, anchor, depends_on, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			course = EXCLUDED.course,
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			due_at = EXCLUDED.due_at,
			est_minutes = EXCLUDED.est_minutes,
			weight = EXCLUDED.weight,
			category = EXCLUDED.category,
			anchor = EXCLUDED.anchor,
			depends_on = EXCLUDED.depends_on,
			updated_at = EXCLUDED.updated_at`,
		t.ID(), t.Course(), t.Title(), t.Status().String(), t.DueAt(),
		t.EstMinutes(), t.Weight(), t.Category(), t.Anchor(), t.DependsOn(),
		t.CreatedAt(), t.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// Close closes the pool.
func (r *PostgresTaskRepository) Close() error {
	r.pool.Close()
	return nil
}

func scanPostgresTask(row pgx.Row) (*task.Task, error) {
	var (
		id, course, title, status, category string
		dueAt                               *time.Time
		estMinutes                          int
		weight                              float64
		anchor                              bool
		deps                                []string
		createdAt, updatedAt                time.Time
	)
	err := row.Scan(&id, &course, &title, &status, &dueAt, &estMinutes,
		&weight, &category, &anchor, &deps, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	parsed, err := task.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	return task.Rehydrate(task.RehydrateParams{
		ID:         id,
		Course:     course,
		Title:      title,
		Status:     parsed,
		DueAt:      dueAt,
		EstMinutes: estMinutes,
		Weight:     weight,
		Category:   category,
		Anchor:     anchor,
		DependsOn:  deps,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	})
}
