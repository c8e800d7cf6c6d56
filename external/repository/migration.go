package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id BIGSERIAL PRIMARY KEY,
		full_name TEXT NOT NULL UNIQUE,
		subteam TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		subteam TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'in_progress', 'blocked', 'done')),
		description TEXT NOT NULL DEFAULT '',
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS daily_sessions (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES students(id),
		meeting_date DATE NOT NULL,
		clock_in_at TIMESTAMPTZ,
		clock_out_at TIMESTAMPTZ,
		subteam TEXT,
		working_on TEXT,
		need_help BOOLEAN NOT NULL DEFAULT FALSE,
		need_help_at TIMESTAMPTZ,
		need_task BOOLEAN NOT NULL DEFAULT FALSE,
		need_task_at TIMESTAMPTZ,
		task_id BIGINT REFERENCES tasks(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (student_id, meeting_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_sessions_open ON daily_sessions (clock_in_at)
		WHERE clock_in_at IS NOT NULL AND clock_out_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_daily_sessions_date ON daily_sessions (meeting_date)`,
	`CREATE TABLE IF NOT EXISTS task_assignments (
		id BIGSERIAL PRIMARY KEY,
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		student_id BIGINT NOT NULL REFERENCES students(id),
		assigned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		unassigned_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_task_assignments_active ON task_assignments (task_id, student_id)
		WHERE unassigned_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS task_comments (
		id BIGSERIAL PRIMARY KEY,
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		author_type TEXT NOT NULL CHECK (author_type IN ('student', 'mentor')),
		author_label TEXT NOT NULL,
		comment TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_task_comments_task ON task_comments (task_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS attendance_corrections (
		id BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL REFERENCES students(id),
		meeting_date DATE NOT NULL,
		requested_clock_in TIMESTAMPTZ NOT NULL,
		requested_clock_out TIMESTAMPTZ,
		reason TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'approved', 'denied')),
		decided_at TIMESTAMPTZ,
		decided_by TEXT,
		applied BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_corrections_status ON attendance_corrections (status, created_at)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
