package dto

import (
	"time"

	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/timetable"
)

// CurriculumItemRequest asks for weekly lessons of one subject with one teacher.
type CurriculumItemRequest struct {
	SubjectID    string  `json:"subject_id" validate:"required"`
	TeacherID    string  `json:"teacher_id" validate:"required"`
	RoomID       *string `json:"room_id"`
	HoursPerWeek int     `json:"hours_per_week" validate:"required,min=1,max=35"`
}

// GenerateScheduleRequest builds a single weekly template for a class.
type GenerateScheduleRequest struct {
	ClassID    string                  `json:"class_id" validate:"required"`
	PeriodID   string                  `json:"academic_period_id" validate:"required"`
	Curriculum []CurriculumItemRequest `json:"curriculum" validate:"omitempty,dive"`
	// ClearExisting defaults to true.
	ClearExisting *bool `json:"clear_existing"`
}

// GenerateScheduleResponse reports the stored weekly template.
type GenerateScheduleResponse struct {
	Success      bool                  `json:"success"`
	Message      string                `json:"message"`
	TotalLessons int                   `json:"total_lessons"`
	Lessons      []timetable.Placement `json:"lessons"`
	Errors       []string              `json:"errors"`
	Warnings     []string              `json:"warnings"`
}

// GenerateSemesterRequest builds and expands a timetable over a half-year.
type GenerateSemesterRequest struct {
	ClassID    string                  `json:"class_id" validate:"required"`
	PeriodID   string                  `json:"academic_period_id" validate:"required"`
	Curriculum []CurriculumItemRequest `json:"curriculum" validate:"omitempty,dive"`
	// StartDate defaults to the academic period start.
	StartDate *Date `json:"start_date" swaggertype:"string" format:"date" example:"2024-09-02"`
	Weeks     int        `json:"weeks" validate:"omitempty,min=1,max=26"`
}

// GenerateSemesterResponse summarises a semester generation.
type GenerateSemesterResponse struct {
	Success          bool                  `json:"success"`
	Partial          bool                  `json:"partial"`
	Message          string                `json:"message"`
	TotalLessons     int                   `json:"total_lessons"`
	WeeksGenerated   int                   `json:"weeks_generated"`
	WeeksWithLessons int                   `json:"weeks_with_lessons"`
	StartDate        *time.Time            `json:"start_date,omitempty"`
	Template         []timetable.Placement `json:"template"`
	Errors           []string              `json:"errors"`
	Warnings         []string              `json:"warnings"`
}

// StandardCurriculumResponse previews the standard plan bound to ids.
type StandardCurriculumResponse struct {
	Grade      int                             `json:"grade"`
	TotalHours int                             `json:"total_hours"`
	Subjects   []models.ResolvedCurriculumItem `json:"subjects"`
}

// ScheduleEntryRequest creates or moves a manual entry.
type ScheduleEntryRequest struct {
	ClassID      string  `json:"class_id" validate:"required"`
	PeriodID     string  `json:"academic_period_id" validate:"required"`
	SubjectID    string  `json:"subject_id" validate:"required"`
	TeacherID    string  `json:"teacher_id" validate:"required"`
	RoomID       *string `json:"room_id"`
	DayOfWeek    int     `json:"day_of_week" validate:"required,min=1,max=5"`
	LessonNumber int     `json:"lesson_number" validate:"required,min=1,max=7"`
}

// UpdateLessonRequest swaps what is taught in an existing cell.
type UpdateLessonRequest struct {
	SubjectID *string `json:"subject_id" validate:"omitempty,min=1"`
	TeacherID *string `json:"teacher_id" validate:"omitempty,min=1"`
	RoomID    *string `json:"room_id"`
}

// SubstitutionRequest assigns a replacement teacher to one entry.
type SubstitutionRequest struct {
	ScheduleID          string `json:"schedule_id" validate:"required"`
	SubstituteTeacherID string `json:"substitute_teacher_id" validate:"required"`
	Reason              string `json:"reason" validate:"max=255"`
}

// ScheduleWriteResponse returns the stored entry with validator warnings.
type ScheduleWriteResponse struct {
	Entry    *models.ScheduleEntry `json:"entry"`
	Warnings []string              `json:"warnings"`
}

// ScheduleQuery filters listings. Dates use YYYY-MM-DD.
type ScheduleQuery struct {
	PeriodID  string `form:"academic_period_id"`
	ClassID   string `form:"class_id"`
	TeacherID string `form:"teacher_id"`
	Week      *int   `form:"week" validate:"omitempty,min=1"`
	From      string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	Format    string `form:"format" validate:"omitempty,oneof=csv pdf xlsx"`
}
