package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/coursedeck/syllabus-extractor/internal/models"
	"github.com/coursedeck/syllabus-extractor/internal/utils"
)

const testSchema = `
CREATE TABLE assignments (
    id TEXT PRIMARY KEY,
    course_name TEXT NOT NULL,
    assignment_name TEXT NOT NULL,
    description TEXT,
    due_date_time TIMESTAMP NOT NULL,
    notification_sent BOOLEAN NOT NULL DEFAULT 0,
    submitted BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (course_name, assignment_name)
);
`

func newTestRepo(t *testing.T) AssignmentRepository {
	t.Helper()

	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return NewAssignmentRepository(db)
}

func draft(course, name string, due time.Time) *models.Assignment {
	return &models.Assignment{
		ID:             utils.GenerateID(),
		CourseName:     course,
		AssignmentName: name,
		DueDateTime:    due,
	}
}

func TestUpsertInsertsNewAssignment(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	due := time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC)

	if err := repo.Upsert(ctx, draft("CS 405", "HW1", due)); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	got, err := repo.ListByCourse(ctx, "CS 405")
	if err != nil {
		t.Fatalf("ListByCourse returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].NotificationSent || got[0].Submitted {
		t.Errorf("new row should start unnotified and unsubmitted: %+v", got[0])
	}
	if !got[0].DueDateTime.Equal(due) {
		t.Errorf("due_date_time = %v, want %v", got[0].DueDateTime, due)
	}
}

func TestUpsertCollisionUpdatesInPlace(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := draft("CS 405", "HW1", time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC))
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert returned error: %v", err)
	}

	// Mark the row notified and submitted, as the reminder path would.
	if err := repo.SetSubmitted(ctx, first.ID, true); err != nil {
		t.Fatalf("SetSubmitted returned error: %v", err)
	}
	markNotified(t, repo, first.ID)

	desc := "revised scope"
	second := draft("CS 405", "HW1", time.Date(2026, 3, 1, 17, 0, 0, 0, time.UTC))
	second.Description = &desc
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("colliding Upsert returned error: %v", err)
	}

	got, err := repo.ListByCourse(ctx, "CS 405")
	if err != nil {
		t.Fatalf("ListByCourse returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("collision must not create a second row, got %d", len(got))
	}

	row := got[0]
	if row.ID != first.ID {
		t.Errorf("collision must keep the original id, got %s", row.ID)
	}
	if row.Description == nil || *row.Description != desc {
		t.Errorf("description not updated: %v", row.Description)
	}
	if !row.DueDateTime.Equal(second.DueDateTime) {
		t.Errorf("due_date_time not updated: %v", row.DueDateTime)
	}
	if row.NotificationSent {
		t.Error("colliding write must reset notification_sent")
	}
	if !row.Submitted {
		t.Error("colliding write must leave submitted untouched")
	}
}

func TestUpsertDistinctKeysCoexist(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	due := time.Date(2026, 2, 15, 23, 59, 0, 0, time.UTC)

	for _, a := range []*models.Assignment{
		draft("CS 405", "HW1", due),
		draft("CS 405", "HW2", due.Add(24*time.Hour)),
		draft("CS 406", "HW1", due),
	} {
		if err := repo.Upsert(ctx, a); err != nil {
			t.Fatalf("Upsert returned error: %v", err)
		}
	}

	got, err := repo.ListByCourse(ctx, "CS 405")
	if err != nil {
		t.Fatalf("ListByCourse returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for CS 405, got %d", len(got))
	}
	if got[0].AssignmentName != "HW1" || got[1].AssignmentName != "HW2" {
		t.Errorf("rows not ordered by due date: %v, %v", got[0].AssignmentName, got[1].AssignmentName)
	}
}

func TestSetSubmittedUnknownID(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.SetSubmitted(context.Background(), "no-such-id", true)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

// markNotified flips notification_sent directly; there is no repository
// operation for it because only the reminder scheduler sets it.
func markNotified(t *testing.T, repo AssignmentRepository, id string) {
	t.Helper()
	r, ok := repo.(*assignmentRepository)
	if !ok {
		t.Fatalf("unexpected repository type %T", repo)
	}
	if _, err := r.db.Exec(`UPDATE assignments SET notification_sent = 1 WHERE id = $1`, id); err != nil {
		t.Fatalf("failed to mark notified: %v", err)
	}
}
