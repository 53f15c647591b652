package models

import "fmt"

const (
	MinComplexity     = 1
	MaxComplexity     = 12
	DefaultComplexity = 5
)

// Subject is a taught discipline.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ComplexityScore rates how demanding a subject is for one grade.
type ComplexityScore struct {
	SubjectID   string `db:"subject_id" json:"subject_id"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	Grade       int    `db:"grade" json:"grade"`
	Score       int    `db:"score" json:"score"`
}

// CurriculumItem asks for Hours weekly lessons of a subject with one teacher.
type CurriculumItem struct {
	SubjectID string  `json:"subject_id"`
	TeacherID string  `json:"teacher_id"`
	RoomID    *string `json:"room_id,omitempty"`
	Hours     int     `json:"hours_per_week"`
}

// NewCurriculumItem validates a curriculum line.
func NewCurriculumItem(subjectID, teacherID string, roomID *string, hours int) (CurriculumItem, error) {
	item := CurriculumItem{SubjectID: subjectID, TeacherID: teacherID, RoomID: normalizeOptional(roomID), Hours: hours}
	if subjectID == "" || teacherID == "" {
		return CurriculumItem{}, fmt.Errorf("%w: curriculum item needs subject and teacher", ErrInvalidEntry)
	}
	if hours <= 0 {
		return CurriculumItem{}, fmt.Errorf("%w: subject %s hours per week must be positive", ErrInvalidEntry, subjectID)
	}
	return item, nil
}

// StandardSubject is one row of the national weekly curriculum for a grade.
type StandardSubject struct {
	Name            string `json:"name"`
	Hours           int    `json:"hours_per_week"`
	NeedsSpecialist bool   `json:"needs_specialist"`
}

// ResolvedCurriculumItem previews how a standard subject was bound to ids.
type ResolvedCurriculumItem struct {
	StandardSubject
	SubjectID   string  `json:"subject_id,omitempty"`
	TeacherID   string  `json:"teacher_id,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
	RoomID      *string `json:"room_id,omitempty"`
	Skipped     string  `json:"skipped,omitempty"`
}
