package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
)

type manualScheduleStore interface {
	conflictStore
	LockPeriod(ctx context.Context, exec sqlx.ExtContext, periodID string) error
	FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleEntry, error)
	Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
	SetSubstitution(ctx context.Context, exec sqlx.ExtContext, id string, substituteID, reason *string) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntryView, error)
}

type entryValidator interface {
	Validate(ctx context.Context, exec sqlx.ExtContext, candidate *models.ScheduleEntry) (*ValidationResult, error)
}

type teacherChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// ScheduleRejectedError carries the validator verdict that blocked a write.
type ScheduleRejectedError struct {
	Result *ValidationResult
}

func (e *ScheduleRejectedError) Error() string {
	return strings.Join(e.Result.Errors, "; ")
}

// ScheduleService handles manual timetable edits. Every write validates and
// stores inside one transaction holding the period lock.
type ScheduleService struct {
	store     manualScheduleStore
	checker   entryValidator
	conflicts *ConflictChecker
	teachers  teacherChecker
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService wires the manual schedule service.
func NewScheduleService(store manualScheduleStore, checker entryValidator, teachers teacherChecker, tx txProvider, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		store:     store,
		checker:   checker,
		conflicts: NewConflictChecker(store),
		teachers:  teachers,
		tx:        tx,
		validator: validate,
		logger:    logger,
	}
}

// List returns template entries, or generated entries when semester is set.
func (s *ScheduleService) List(ctx context.Context, query dto.ScheduleQuery, semester bool) ([]models.ScheduleEntryView, error) {
	filter, err := s.filter(query, semester)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule")
	}
	if entries == nil {
		entries = []models.ScheduleEntryView{}
	}
	return entries, nil
}

// Validate checks a candidate without storing it.
func (s *ScheduleService) Validate(ctx context.Context, req dto.ScheduleEntryRequest) (*ValidationResult, error) {
	candidate, err := s.candidate(req)
	if err != nil {
		return nil, err
	}
	res, err := s.checker.Validate(ctx, nil, candidate)
	if err != nil {
		return nil, internalError(err, "failed to validate schedule entry")
	}
	return res, nil
}

// Create stores a new template entry after validation.
func (s *ScheduleService) Create(ctx context.Context, req dto.ScheduleEntryRequest, actorID string) (*dto.ScheduleWriteResponse, error) {
	entry, err := s.candidate(req)
	if err != nil {
		return nil, err
	}
	if actorID != "" {
		entry.CreatedBy = &actorID
	}
	var warnings []string
	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.store.LockPeriod(ctx, tx, entry.PeriodID); err != nil {
			return err
		}
		var err error
		if warnings, err = s.check(ctx, tx, entry); err != nil {
			return err
		}
		return s.store.Insert(ctx, tx, entry)
	})
	if err != nil {
		return nil, internalError(err, "failed to create schedule entry")
	}
	s.logger.Info("schedule entry created", zap.String("id", entry.ID), zap.String("class_id", entry.ClassID))
	return &dto.ScheduleWriteResponse{Entry: entry, Warnings: warnings}, nil
}

// Update moves an entry to another cell or reassigns it. Generated entries keep
// their week; a weekday change moves the date to that weekday of the same
// Monday-based week, so lessons held on a working Saturday return to a weekday.
func (s *ScheduleService) Update(ctx context.Context, id string, req dto.ScheduleEntryRequest) (*dto.ScheduleWriteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	return s.modify(ctx, id, func(entry *models.ScheduleEntry) error {
		if entry.ClassID != req.ClassID || entry.PeriodID != req.PeriodID {
			return appErrors.Clone(appErrors.ErrValidation, "an entry cannot move between classes or academic periods")
		}
		if entry.LessonDate != nil && req.DayOfWeek != entry.DayOfWeek {
			moved := timetable.DateInWeek(*entry.LessonDate, req.DayOfWeek)
			entry.LessonDate = &moved
		}
		entry.SubjectID = req.SubjectID
		entry.TeacherID = req.TeacherID
		entry.RoomID = emptyToNil(req.RoomID)
		entry.DayOfWeek = req.DayOfWeek
		entry.LessonNumber = req.LessonNumber
		return nil
	})
}

// UpdateLesson swaps subject, teacher or room in place.
func (s *ScheduleService) UpdateLesson(ctx context.Context, id string, req dto.UpdateLessonRequest) (*dto.ScheduleWriteResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if req.SubjectID == nil && req.TeacherID == nil && req.RoomID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	return s.modify(ctx, id, func(entry *models.ScheduleEntry) error {
		if req.SubjectID != nil {
			entry.SubjectID = *req.SubjectID
		}
		if req.TeacherID != nil {
			entry.TeacherID = *req.TeacherID
		}
		if req.RoomID != nil {
			entry.RoomID = emptyToNil(req.RoomID)
		}
		return nil
	})
}

// Delete removes one entry.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, nil, id); err != nil {
		return notFoundOr(err, "schedule entry not found", "failed to delete schedule entry")
	}
	return nil
}

// SetSubstitution assigns a replacement teacher to an entry. The substitute
// must be free in the entry's cell and week.
func (s *ScheduleService) SetSubstitution(ctx context.Context, req dto.SubstitutionRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid substitution payload")
	}
	entry, err := s.store.FindByID(ctx, nil, req.ScheduleID)
	if err != nil {
		return nil, notFoundOr(err, "schedule entry not found", "failed to load schedule entry")
	}
	if entry.TeacherID == req.SubstituteTeacherID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "substitute must differ from the assigned teacher")
	}
	ok, err := s.teachers.Exists(ctx, req.SubstituteTeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute teacher")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "substitute teacher not found")
	}
	substitute := req.SubstituteTeacherID
	reason := emptyToNil(&req.Reason)
	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.store.LockPeriod(ctx, tx, entry.PeriodID); err != nil {
			return err
		}
		busy, err := s.conflicts.HasConflict(ctx, tx, models.ConflictProbe{
			Scope:      models.ConflictTeacher,
			ResourceID: substitute,
			PeriodID:   entry.PeriodID,
			DayOfWeek:  entry.DayOfWeek,
			Lesson:     entry.LessonNumber,
			ExcludeID:  entry.ID,
			Week:       entry.WeekNumber,
		})
		if err != nil {
			return err
		}
		if busy {
			return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("substitute teacher is already teaching on %s, lesson %d",
				timetable.WeekdayName(entry.DayOfWeek), entry.LessonNumber))
		}
		return s.store.SetSubstitution(ctx, tx, entry.ID, &substitute, reason)
	})
	if err != nil {
		return nil, notFoundOr(err, "schedule entry not found", "failed to store substitution")
	}
	entry.SubstituteTeacherID = &substitute
	entry.SubstitutionReason = reason
	s.logger.Info("substitution assigned", zap.String("id", entry.ID), zap.String("substitute_teacher_id", substitute))
	return entry, nil
}

// ClearSubstitution restores the assigned teacher.
func (s *ScheduleService) ClearSubstitution(ctx context.Context, id string) error {
	if err := s.store.SetSubstitution(ctx, nil, id, nil, nil); err != nil {
		return notFoundOr(err, "schedule entry not found", "failed to clear substitution")
	}
	return nil
}

func (s *ScheduleService) modify(ctx context.Context, id string, apply func(entry *models.ScheduleEntry) error) (*dto.ScheduleWriteResponse, error) {
	current, err := s.store.FindByID(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(err, "schedule entry not found", "failed to load schedule entry")
	}
	var (
		entry    *models.ScheduleEntry
		warnings []string
	)
	err = runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.store.LockPeriod(ctx, tx, current.PeriodID); err != nil {
			return err
		}
		found, err := s.store.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := apply(found); err != nil {
			return err
		}
		if err := found.Validate(); err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		if warnings, err = s.check(ctx, tx, found); err != nil {
			return err
		}
		entry = found
		return s.store.Update(ctx, tx, found)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
	}
	if err != nil {
		return nil, internalError(err, "failed to update schedule entry")
	}
	return &dto.ScheduleWriteResponse{Entry: entry, Warnings: warnings}, nil
}

// check runs the validator and turns blocking errors into a typed rejection.
func (s *ScheduleService) check(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) ([]string, error) {
	res, err := s.checker.Validate(ctx, exec, entry)
	if err != nil {
		return nil, err
	}
	if res.Valid {
		return res.Warnings, nil
	}
	base := appErrors.ErrScheduleRejected
	if len(res.Conflicts) > 0 {
		base = appErrors.ErrConflict
	}
	return nil, appErrors.Wrap(&ScheduleRejectedError{Result: res}, base.Code, base.Status, "schedule entry rejected")
}

func (s *ScheduleService) candidate(req dto.ScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	entry, err := models.NewScheduleEntry(req.PeriodID, req.ClassID, req.SubjectID, req.TeacherID, req.RoomID, req.DayOfWeek, req.LessonNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	return entry, nil
}

func (s *ScheduleService) filter(query dto.ScheduleQuery, semester bool) (models.ScheduleFilter, error) {
	if err := s.validator.Struct(query); err != nil {
		return models.ScheduleFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule query")
	}
	filter := models.ScheduleFilter{
		PeriodID:  query.PeriodID,
		ClassID:   query.ClassID,
		TeacherID: query.TeacherID,
		Week:      query.Week,
		Semester:  semester,
	}
	bounds := []struct {
		raw string
		dst **time.Time
	}{{query.From, &filter.From}, {query.To, &filter.To}}
	for _, b := range bounds {
		if b.raw == "" {
			continue
		}
		day, err := time.Parse("2006-01-02", b.raw)
		if err != nil {
			return models.ScheduleFilter{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid date %q", b.raw))
		}
		*b.dst = &day
	}
	return filter, nil
}

func emptyToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
