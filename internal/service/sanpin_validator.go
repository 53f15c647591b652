package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
)

const gradeOneLessonReminder = "grade 1 lessons last 35 minutes in the first half-year and 45 minutes afterwards"

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type dayEntryReader interface {
	ListDayEntries(ctx context.Context, exec sqlx.ExtContext, classID, periodID string, day int, week *int, excludeID string) ([]models.DayEntry, error)
}

type idNamer interface {
	NamesByIDs(ctx context.Context, ids []string) ([]models.NamedID, error)
}

type complexityResolver interface {
	Resolve(ctx context.Context, grade int) (Complexity, error)
}

// ValidationResult is the verdict for one candidate entry. Errors block the write.
type ValidationResult struct {
	Valid     bool                   `json:"valid"`
	Errors    []string               `json:"errors"`
	Warnings  []string               `json:"warnings"`
	Conflicts []models.ConflictScope `json:"conflicts,omitempty"`
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SanPinValidator checks a single entry against booking conflicts and the
// sanitary load rules for its grade.
type SanPinValidator struct {
	classes    classReader
	subjects   idNamer
	teachers   idNamer
	complexity complexityResolver
	conflicts  *ConflictChecker
	days       dayEntryReader
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewSanPinValidator wires the validator.
func NewSanPinValidator(classes classReader, subjects, teachers idNamer, complexity complexityResolver, conflicts *ConflictChecker, days dayEntryReader, metrics *MetricsService, logger *zap.Logger) *SanPinValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SanPinValidator{
		classes:    classes,
		subjects:   subjects,
		teachers:   teachers,
		complexity: complexity,
		conflicts:  conflicts,
		days:       days,
		metrics:    metrics,
		logger:     logger,
	}
}

// Validate runs every check against candidate. exec may be a transaction so the
// verdict holds for the write that follows; nil reads from the pool.
// An unknown subject or teacher is returned as a NotFound error; otherwise only
// store failures are returned as errors.
//
// The daily load sums the complexity of the candidate and of every other lesson
// the class has that day. Subjects without a rating count as
// models.DefaultComplexity, so an unrated lesson still adds to the total.
func (v *SanPinValidator) Validate(ctx context.Context, exec sqlx.ExtContext, candidate *models.ScheduleEntry) (*ValidationResult, error) {
	res := &ValidationResult{Valid: true, Errors: []string{}, Warnings: []string{}}

	class, err := v.classes.FindByID(ctx, candidate.ClassID)
	if errors.Is(err, sql.ErrNoRows) {
		res.fail("class not found")
		v.metrics.RecordValidation(false)
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load class: %w", err)
	}

	names, err := v.subjects.NamesByIDs(ctx, []string{candidate.SubjectID})
	if err != nil {
		return nil, fmt.Errorf("load subject name: %w", err)
	}
	if len(names) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not found", candidate.SubjectID))
	}
	subject := names[0].Name
	if subject == "" {
		subject = candidate.SubjectID
	}
	teachers, err := v.teachers.NamesByIDs(ctx, []string{candidate.TeacherID})
	if err != nil {
		return nil, fmt.Errorf("load teacher name: %w", err)
	}
	if len(teachers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("teacher %s not found", candidate.TeacherID))
	}

	cx, err := v.complexity.Resolve(ctx, class.Grade)
	if err != nil {
		return nil, err
	}
	score, rated := cx.Score(candidate.SubjectID)
	if !rated {
		res.warn("%s", missingComplexityWarning(subject))
	}
	if msg := timetable.PlacementWarning(subject, score, candidate.LessonNumber); msg != "" {
		res.Warnings = append(res.Warnings, msg)
	}

	day := timetable.WeekdayName(candidate.DayOfWeek)
	hits, err := v.conflicts.Check(ctx, exec, candidate)
	if err != nil {
		return nil, fmt.Errorf("check conflicts: %w", err)
	}
	res.Conflicts = hits
	for _, scope := range hits {
		switch scope {
		case models.ConflictClass:
			res.fail("class %s already has a lesson on %s, lesson %d", class.Name(), day, candidate.LessonNumber)
		case models.ConflictTeacher:
			res.fail("teacher is already teaching on %s, lesson %d", day, candidate.LessonNumber)
		case models.ConflictRoom:
			res.fail("room is already occupied on %s, lesson %d", day, candidate.LessonNumber)
		}
	}

	existing, err := v.days.ListDayEntries(ctx, exec, candidate.ClassID, candidate.PeriodID, candidate.DayOfWeek, candidate.WeekNumber, candidate.ID)
	if err != nil {
		return nil, fmt.Errorf("load day entries: %w", err)
	}
	load := score
	for _, e := range existing {
		s, _ := cx.Score(e.SubjectID)
		load += s
	}
	if ceiling := timetable.DailyLoadCeiling(class.Grade); load > ceiling {
		res.warn("daily complexity on %s would be %d, above the limit of %d for grade %d", day, load, ceiling, class.Grade)
	}
	if limit := timetable.MaxLessonsPerDay(class.Grade); len(existing)+1 > limit {
		res.warn("%s would have %d lessons, above the limit of %d for grade %d", day, len(existing)+1, limit, class.Grade)
	}

	if class.Grade == 1 {
		if candidate.LessonNumber > 4 {
			res.warn("grade 1 should not have more than 4 lessons a day; lesson %d is on %s", candidate.LessonNumber, day)
		}
		res.Warnings = append(res.Warnings, gradeOneLessonReminder)
	}

	v.metrics.RecordValidation(res.Valid)
	return res, nil
}
