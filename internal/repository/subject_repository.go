package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

// SubjectRepository reads subjects and their complexity ratings.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByNames maps subject names to their rows. Unknown names are absent from the result.
func (r *SubjectRepository) FindByNames(ctx context.Context, names []string) ([]models.Subject, error) {
	if len(names) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name FROM subjects WHERE name = ANY($1) ORDER BY name`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("find subjects by name: %w", err)
	}
	return subjects, nil
}

// NamesByIDs returns display names for the given subject ids.
func (r *SubjectRepository) NamesByIDs(ctx context.Context, ids []string) ([]models.NamedID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name FROM subjects WHERE id = ANY($1)`
	var names []models.NamedID
	if err := r.db.SelectContext(ctx, &names, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list subject names: %w", err)
	}
	return names, nil
}

// ComplexityByGrade returns every rated subject for a grade.
func (r *SubjectRepository) ComplexityByGrade(ctx context.Context, grade int) ([]models.ComplexityScore, error) {
	const query = `SELECT sc.subject_id, s.name AS subject_name, sc.grade, sc.score
FROM subject_complexity sc JOIN subjects s ON s.id = sc.subject_id
WHERE sc.grade = $1 ORDER BY s.name`
	var scores []models.ComplexityScore
	if err := r.db.SelectContext(ctx, &scores, query, grade); err != nil {
		return nil, fmt.Errorf("list complexity for grade %d: %w", grade, err)
	}
	return scores, nil
}
