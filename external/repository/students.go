package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/warlocks1507/checkin/internal/repository"
)

const studentColumns = `id, full_name, subteam, is_active, created_at`

func scanStudent(row pgx.Row) (*repository.Student, error) {
	var s repository.Student
	if err := row.Scan(&s.ID, &s.FullName, &s.Subteam, &s.IsActive, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PostgresRepository) ListStudents(ctx context.Context, activeOnly bool) ([]repository.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY full_name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanStudent)
}

func (r *PostgresRepository) GetStudent(ctx context.Context, id int64) (*repository.Student, error) {
	row := r.db.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	return scanOne(row, scanStudent)
}

func (r *PostgresRepository) UpsertStudent(ctx context.Context, input repository.CreateStudentInput) (*repository.Student, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO students (full_name, subteam, is_active, created_at)
		 VALUES ($1, $2, TRUE, $3)
		 ON CONFLICT (full_name) DO UPDATE
		   SET subteam = EXCLUDED.subteam,
		       is_active = TRUE
		 RETURNING `+studentColumns,
		input.FullName, input.Subteam, input.Now)
	return scanStudent(row)
}

func (r *PostgresRepository) UpdateStudent(ctx context.Context, input repository.UpdateStudentInput) (*repository.Student, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE students
		    SET full_name = COALESCE($2, full_name),
		        subteam = CASE WHEN $3::text IS NULL THEN subteam ELSE NULLIF($3::text, '') END,
		        is_active = COALESCE($4, is_active)
		  WHERE id = $1
		  RETURNING `+studentColumns,
		input.ID, input.FullName, input.Subteam, input.IsActive)
	s, err := scanOne(row, scanStudent)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	return s, nil
}
