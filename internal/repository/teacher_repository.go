package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

// TeacherRepository reads teachers and their qualifications.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// NamesByIDs returns display names for the given teacher ids.
func (r *TeacherRepository) NamesByIDs(ctx context.Context, ids []string) ([]models.NamedID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, full_name AS name FROM teachers WHERE id = ANY($1)`
	var names []models.NamedID
	if err := r.db.SelectContext(ctx, &names, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list teacher names: %w", err)
	}
	return names, nil
}

// QualifiedForSubjects returns, per subject, the qualified teacher with the lowest id.
func (r *TeacherRepository) QualifiedForSubjects(ctx context.Context, subjectIDs []string) (map[string]models.Teacher, error) {
	result := map[string]models.Teacher{}
	if len(subjectIDs) == 0 {
		return result, nil
	}
	const query = `SELECT DISTINCT ON (ts.subject_id) ts.subject_id, t.id, t.full_name
FROM teacher_subjects ts JOIN teachers t ON t.id = ts.teacher_id
WHERE ts.subject_id = ANY($1)
ORDER BY ts.subject_id, t.id`
	var rows []struct {
		SubjectID string `db:"subject_id"`
		models.Teacher
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(subjectIDs)); err != nil {
		return nil, fmt.Errorf("find qualified teachers: %w", err)
	}
	for _, row := range rows {
		result[row.SubjectID] = row.Teacher
	}
	return result, nil
}

// Exists reports whether a teacher id is known.
func (r *TeacherRepository) Exists(ctx context.Context, id string) (bool, error) {
	var found string
	err := r.db.GetContext(ctx, &found, `SELECT id FROM teachers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find teacher: %w", err)
	}
	return true, nil
}
