package models

import (
	"errors"
	"fmt"
	"time"
)

const (
	FirstWeekday   = 1
	LastWeekday    = 5
	MaxLessonSlots = 7
)

// ErrInvalidEntry marks a schedule entry rejected by its constructor.
var ErrInvalidEntry = errors.New("invalid schedule entry")

// ScheduleEntry is one lesson placement. Template entries leave WeekNumber and
// LessonDate empty; entries produced by semester generation carry both.
type ScheduleEntry struct {
	ID                  string     `db:"id" json:"id"`
	PeriodID            string     `db:"academic_period_id" json:"academic_period_id"`
	ClassID             string     `db:"class_id" json:"class_id"`
	SubjectID           string     `db:"subject_id" json:"subject_id"`
	TeacherID           string     `db:"teacher_id" json:"teacher_id"`
	RoomID              *string    `db:"room_id" json:"room_id,omitempty"`
	DayOfWeek           int        `db:"day_of_week" json:"day_of_week"`
	LessonNumber        int        `db:"lesson_number" json:"lesson_number"`
	WeekNumber          *int       `db:"week_number" json:"week_number,omitempty"`
	LessonDate          *time.Time `db:"lesson_date" json:"lesson_date,omitempty"`
	SubstituteTeacherID *string    `db:"substitute_teacher_id" json:"substitute_teacher_id,omitempty"`
	SubstitutionReason  *string    `db:"substitution_reason" json:"substitution_reason,omitempty"`
	CreatedBy           *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// NewScheduleEntry builds a template entry after checking its slot coordinates.
func NewScheduleEntry(periodID, classID, subjectID, teacherID string, roomID *string, weekday, lesson int) (*ScheduleEntry, error) {
	entry := &ScheduleEntry{
		PeriodID:     periodID,
		ClassID:      classID,
		SubjectID:    subjectID,
		TeacherID:    teacherID,
		RoomID:       normalizeOptional(roomID),
		DayOfWeek:    weekday,
		LessonNumber: lesson,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Validate checks the invariants every stored entry must satisfy.
func (e *ScheduleEntry) Validate() error {
	switch {
	case e.PeriodID == "" || e.ClassID == "" || e.SubjectID == "" || e.TeacherID == "":
		return fmt.Errorf("%w: period, class, subject and teacher are required", ErrInvalidEntry)
	case e.DayOfWeek < FirstWeekday || e.DayOfWeek > LastWeekday:
		return fmt.Errorf("%w: day of week %d outside %d..%d", ErrInvalidEntry, e.DayOfWeek, FirstWeekday, LastWeekday)
	case e.LessonNumber < 1 || e.LessonNumber > MaxLessonSlots:
		return fmt.Errorf("%w: lesson number %d outside 1..%d", ErrInvalidEntry, e.LessonNumber, MaxLessonSlots)
	case e.WeekNumber != nil && *e.WeekNumber < 1:
		return fmt.Errorf("%w: week number must be positive", ErrInvalidEntry)
	case (e.WeekNumber == nil) != (e.LessonDate == nil):
		return fmt.Errorf("%w: week number and lesson date go together", ErrInvalidEntry)
	}
	return nil
}

// ScheduleEntryView is an entry joined with display names.
type ScheduleEntryView struct {
	ScheduleEntry
	ClassGrade            int     `db:"class_grade" json:"class_grade"`
	ClassSection          string  `db:"class_section" json:"class_section"`
	SubjectName           string  `db:"subject_name" json:"subject_name"`
	TeacherName           string  `db:"teacher_name" json:"teacher_name"`
	RoomName              *string `db:"room_name" json:"room_name,omitempty"`
	SubstituteTeacherName *string `db:"substitute_teacher_name" json:"substitute_teacher_name,omitempty"`
}

// ScheduleFilter narrows schedule listings.
type ScheduleFilter struct {
	PeriodID  string
	ClassID   string
	TeacherID string
	Week      *int
	From      *time.Time
	To        *time.Time
	// Semester selects generated entries only; otherwise only template entries are listed.
	Semester bool
}

// DayEntry is the slice of an existing entry the daily load checks need.
type DayEntry struct {
	ID        string `db:"id"`
	SubjectID string `db:"subject_id"`
}

// ConflictScope names the resource a slot collision is checked for.
type ConflictScope string

const (
	ConflictClass   ConflictScope = "CLASS"
	ConflictTeacher ConflictScope = "TEACHER"
	ConflictRoom    ConflictScope = "ROOM"
)

// ConflictProbe describes one lookup against the store.
type ConflictProbe struct {
	Scope     ConflictScope
	PeriodID  string
	DayOfWeek int
	Lesson    int
	// ResourceID is the class, teacher or room id matching Scope.
	ResourceID string
	ExcludeID  string
	// Week scopes the probe to one semester week; nil matches every week.
	Week *int
}

// Occupancy is a busy (weekday, lesson) cell of some teacher or room.
type Occupancy struct {
	TeacherID string  `db:"teacher_id"`
	RoomID    *string `db:"room_id"`
	DayOfWeek int     `db:"day_of_week"`
	Lesson    int     `db:"lesson_number"`
}

func normalizeOptional(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}
