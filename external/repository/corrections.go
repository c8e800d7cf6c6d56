package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/warlocks1507/checkin/internal/repository"
)

const correctionColumns = `id, student_id, meeting_date, requested_clock_in, requested_clock_out, reason,
	status, decided_at, decided_by, applied, created_at`

func scanCorrection(row pgx.Row) (*repository.AttendanceCorrection, error) {
	var c repository.AttendanceCorrection
	var status string
	err := row.Scan(&c.ID, &c.StudentID, &c.MeetingDate, &c.RequestedClockIn, &c.RequestedClockOut, &c.Reason,
		&status, &c.DecidedAt, &c.DecidedBy, &c.Applied, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = repository.CorrectionStatus(status)
	return &c, nil
}

func (r *PostgresRepository) CreateCorrection(ctx context.Context, input repository.CreateCorrectionInput) (*repository.AttendanceCorrection, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO attendance_corrections
		   (student_id, meeting_date, requested_clock_in, requested_clock_out, reason, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		 RETURNING `+correctionColumns,
		input.StudentID, input.MeetingDate, input.RequestedClockIn, input.RequestedClockOut, input.Reason, input.Now)
	return scanCorrection(row)
}

func (r *PostgresRepository) GetCorrection(ctx context.Context, id int64) (*repository.AttendanceCorrection, error) {
	row := r.db.QueryRow(ctx, `SELECT `+correctionColumns+` FROM attendance_corrections WHERE id = $1`, id)
	return scanOne(row, scanCorrection)
}

func (r *PostgresRepository) ListCorrections(ctx context.Context, filter repository.CorrectionFilter) ([]repository.AttendanceCorrection, error) {
	query := `SELECT ` + correctionColumns + ` FROM attendance_corrections`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCorrection)
}

func (r *PostgresRepository) DecideCorrection(ctx context.Context, input repository.DecideCorrectionInput) (*repository.AttendanceCorrection, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE attendance_corrections
		    SET status = $2, decided_at = $3, decided_by = $4, applied = $5
		  WHERE id = $1 AND status = 'pending'
		  RETURNING `+correctionColumns,
		input.ID, string(input.Status), input.Now, input.DecidedBy, input.Applied)
	return scanOne(row, scanCorrection)
}
