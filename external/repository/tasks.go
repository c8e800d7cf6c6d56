package repository

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/warlocks1507/checkin/internal/repository"
)

const taskColumns = `id, title, subteam, status, description, archived, created_at, updated_at`

func scanTask(row pgx.Row) (*repository.Task, error) {
	var t repository.Task
	var status string
	if err := row.Scan(&t.ID, &t.Title, &t.Subteam, &status, &t.Description, &t.Archived, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = repository.TaskStatus(status)
	return &t, nil
}

func statusArg(s *repository.TaskStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func (r *PostgresRepository) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]repository.TaskListRow, error) {
	args := []any{}
	where := []string{"TRUE"}
	if filter.Subteam != "" {
		args = append(args, filter.Subteam)
		where = append(where, "t.subteam = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, "t.status = $"+strconv.Itoa(len(args)))
	}
	if !filter.IncludeArchived {
		where = append(where, "t.archived = FALSE")
	}

	query := `
		WITH last_comment AS (
		  SELECT task_id, MAX(created_at) AS last_comment_at
		    FROM task_comments
		   GROUP BY task_id
		),
		last_assign AS (
		  SELECT task_id, MAX(assigned_at) AS last_assigned_at
		    FROM task_assignments
		   WHERE unassigned_at IS NULL
		   GROUP BY task_id
		)
		SELECT t.id, t.title, t.subteam, t.status, t.description, t.archived, t.created_at, t.updated_at,
		       lc.last_comment_at, la.last_assigned_at
		  FROM tasks t
		  LEFT JOIN last_comment lc ON lc.task_id = t.id
		  LEFT JOIN last_assign la ON la.task_id = t.id
		 WHERE ` + strings.Join(where, " AND ") + `
		 ORDER BY CASE t.status
		            WHEN 'todo' THEN 1
		            WHEN 'in_progress' THEN 2
		            WHEN 'blocked' THEN 3
		            WHEN 'done' THEN 4
		            ELSE 5
		          END,
		          t.updated_at DESC,
		          t.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	list, err := collect(rows, func(row pgx.Row) (*repository.TaskListRow, error) {
		var t repository.TaskListRow
		var status string
		err := row.Scan(&t.ID, &t.Title, &t.Subteam, &status, &t.Description, &t.Archived, &t.CreatedAt, &t.UpdatedAt,
			&t.LastCommentAt, &t.LastAssignedAt)
		if err != nil {
			return nil, err
		}
		t.Status = repository.TaskStatus(status)
		return &t, nil
	})
	if err != nil || len(list) == 0 {
		return list, err
	}

	ids := make([]int64, 0, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
	}
	assignees, err := r.activeAssignees(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Assignees = assignees[list[i].ID]
	}
	return list, nil
}

func (r *PostgresRepository) activeAssignees(ctx context.Context, taskIDs []int64) (map[int64][]repository.TaskAssignee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT ta.task_id, s.id, s.full_name
		   FROM task_assignments ta
		   JOIN students s ON s.id = ta.student_id
		  WHERE ta.unassigned_at IS NULL AND ta.task_id = ANY($1)
		  ORDER BY s.full_name ASC`,
		taskIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64][]repository.TaskAssignee)
	for rows.Next() {
		var taskID int64
		var a repository.TaskAssignee
		if err := rows.Scan(&taskID, &a.StudentID, &a.FullName); err != nil {
			return nil, err
		}
		out[taskID] = append(out[taskID], a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetTask(ctx context.Context, id int64) (*repository.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanOne(row, scanTask)
}

func (r *PostgresRepository) CreateTask(ctx context.Context, input repository.CreateTaskInput) (*repository.Task, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO tasks (title, subteam, status, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING `+taskColumns,
		input.Title, input.Subteam, string(input.Status), input.Description, input.Now)
	return scanTask(row)
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, input repository.UpdateTaskInput) (*repository.Task, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE tasks
		    SET title = COALESCE($2, title),
		        subteam = COALESCE($3, subteam),
		        description = COALESCE($4, description),
		        status = COALESCE($5, status),
		        updated_at = $6
		  WHERE id = $1
		  RETURNING `+taskColumns,
		input.ID, input.Title, input.Subteam, input.Description, statusArg(input.Status), input.Now)
	return scanOne(row, scanTask)
}

func (r *PostgresRepository) SetTaskArchived(ctx context.Context, input repository.SetTaskArchivedInput) (*repository.Task, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE tasks SET archived = $2, updated_at = $3 WHERE id = $1 RETURNING `+taskColumns,
		input.ID, input.Archived, input.Now)
	return scanOne(row, scanTask)
}

func (r *PostgresRepository) TouchTask(ctx context.Context, id int64, now time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE tasks SET updated_at = $2 WHERE id = $1`, id, now)
	return err
}

func (r *PostgresRepository) StartTask(ctx context.Context, id int64, now time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks
		    SET status = CASE WHEN status = 'todo' THEN 'in_progress' ELSE status END,
		        updated_at = $2
		  WHERE id = $1`,
		id, now)
	return err
}

func (r *PostgresRepository) AssignStudent(ctx context.Context, input repository.AssignmentInput) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO task_assignments (task_id, student_id, assigned_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (task_id, student_id) WHERE unassigned_at IS NULL DO NOTHING`,
		input.TaskID, input.StudentID, input.Now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresRepository) UnassignStudent(ctx context.Context, input repository.AssignmentInput) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE task_assignments
		    SET unassigned_at = $3
		  WHERE task_id = $1 AND student_id = $2 AND unassigned_at IS NULL`,
		input.TaskID, input.StudentID, input.Now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const commentColumns = `id, task_id, author_type, author_label, comment, created_at`

func scanComment(row pgx.Row) (*repository.TaskComment, error) {
	var c repository.TaskComment
	var authorType string
	if err := row.Scan(&c.ID, &c.TaskID, &authorType, &c.AuthorLabel, &c.Comment, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.AuthorType = repository.CommentAuthorType(authorType)
	return &c, nil
}

func (r *PostgresRepository) ListComments(ctx context.Context, taskID int64) ([]repository.TaskComment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+commentColumns+` FROM task_comments WHERE task_id = $1 ORDER BY created_at ASC, id ASC`,
		taskID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanComment)
}

func (r *PostgresRepository) InsertComment(ctx context.Context, input repository.InsertCommentInput) (*repository.TaskComment, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO task_comments (task_id, author_type, author_label, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+commentColumns,
		input.TaskID, string(input.AuthorType), input.AuthorLabel, input.Comment, input.Now)
	return scanComment(row)
}
