package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/warlocks1507/checkin/internal/repository"
)

const sessionColumns = `id, student_id, meeting_date, clock_in_at, clock_out_at, subteam, working_on,
	need_help, need_help_at, need_task, need_task_at, task_id, created_at, updated_at`

func scanSession(row pgx.Row) (*repository.DailySession, error) {
	var s repository.DailySession
	err := row.Scan(
		&s.ID, &s.StudentID, &s.MeetingDate, &s.ClockInAt, &s.ClockOutAt, &s.Subteam, &s.WorkingOn,
		&s.NeedHelp, &s.NeedHelpAt, &s.NeedTask, &s.NeedTaskAt, &s.TaskID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) UpsertSession(ctx context.Context, input repository.UpsertSessionInput) (*repository.DailySession, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO daily_sessions (student_id, meeting_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (student_id, meeting_date) DO UPDATE
		   SET updated_at = EXCLUDED.updated_at
		 RETURNING `+sessionColumns,
		input.StudentID, input.MeetingDate, input.Now)
	return scanSession(row)
}

func (r *PostgresRepository) UpdateSession(ctx context.Context, s *repository.DailySession) error {
	_, err := r.db.Exec(ctx,
		`UPDATE daily_sessions
		    SET clock_in_at = $2,
		        clock_out_at = $3,
		        subteam = $4,
		        working_on = $5,
		        need_help = $6,
		        need_help_at = $7,
		        need_task = $8,
		        need_task_at = $9,
		        task_id = $10,
		        updated_at = $11
		  WHERE id = $1`,
		s.ID, s.ClockInAt, s.ClockOutAt, s.Subteam, s.WorkingOn,
		s.NeedHelp, s.NeedHelpAt, s.NeedTask, s.NeedTaskAt, s.TaskID, s.UpdatedAt)
	return err
}

func (r *PostgresRepository) GetSession(ctx context.Context, studentID int64, meetingDate time.Time) (*repository.DailySession, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM daily_sessions WHERE student_id = $1 AND meeting_date = $2`,
		studentID, meetingDate)
	return scanOne(row, scanSession)
}

func (r *PostgresRepository) ListSessionsByDate(ctx context.Context, meetingDate time.Time) ([]repository.DailySession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM daily_sessions WHERE meeting_date = $1 ORDER BY student_id`,
		meetingDate)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSession)
}

func (r *PostgresRepository) ListSessionsByStudent(ctx context.Context, studentID int64, limit int) ([]repository.DailySession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM daily_sessions WHERE student_id = $1
		 ORDER BY meeting_date DESC LIMIT $2`,
		studentID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSession)
}

func (r *PostgresRepository) ListSessionsInRange(ctx context.Context, start, end time.Time) ([]repository.DailySession, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sessionColumns+` FROM daily_sessions
		 WHERE meeting_date BETWEEN $1 AND $2 AND clock_in_at IS NOT NULL
		 ORDER BY student_id, meeting_date`,
		start, end)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSession)
}

func (r *PostgresRepository) CloseStaleSessions(ctx context.Context, input repository.CloseStaleSessionsInput) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE daily_sessions
		    SET clock_out_at = clock_in_at + make_interval(secs => $3::double precision),
		        updated_at = $1
		  WHERE clock_in_at IS NOT NULL
		    AND clock_out_at IS NULL
		    AND clock_in_at < $2`,
		input.Now, input.Now.Add(-input.MaxOpen), input.MaxOpen.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
