package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coursedeck/syllabus-extractor/internal/models"
)

type AssignmentRepository interface {
	// Upsert inserts the assignment, or on a (course_name, assignment_name)
	// collision updates description and due date in place. A colliding write
	// resets notification_sent: the due date may have moved, so any reminder
	// already sent is stale. submitted is never touched by this path.
	Upsert(ctx context.Context, a *models.Assignment) error
	ListByCourse(ctx context.Context, courseName string) ([]models.Assignment, error)
	SetSubmitted(ctx context.Context, id string, submitted bool) error
}

type assignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Upsert(ctx context.Context, a *models.Assignment) error {
	query := `
		INSERT INTO assignments
			(id, course_name, assignment_name, description, due_date_time,
			 notification_sent, submitted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7)
		ON CONFLICT (course_name, assignment_name) DO UPDATE SET
			description = excluded.description,
			due_date_time = excluded.due_date_time,
			notification_sent = 0,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.CourseName,
		a.AssignmentName,
		a.Description,
		a.DueDateTime,
		now,
		now,
	)

	return err
}

func (r *assignmentRepository) ListByCourse(ctx context.Context, courseName string) ([]models.Assignment, error) {
	query := `
		SELECT id, course_name, assignment_name, description, due_date_time,
		       notification_sent, submitted, created_at, updated_at
		FROM assignments
		WHERE course_name = $1
		ORDER BY due_date_time, assignment_name
	`

	assignments := []models.Assignment{}
	if err := r.db.SelectContext(ctx, &assignments, query, courseName); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) SetSubmitted(ctx context.Context, id string, submitted bool) error {
	query := `UPDATE assignments SET submitted = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, submitted, time.Now().UTC())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
