package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/timetable"
	"github.com/noah-isme/school-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
)

type schedulerClassReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindPeriodByID(ctx context.Context, id string) (*models.AcademicPeriod, error)
}

type schedulerSubjectReader interface {
	FindByNames(ctx context.Context, names []string) ([]models.Subject, error)
	NamesByIDs(ctx context.Context, ids []string) ([]models.NamedID, error)
}

type schedulerTeacherReader interface {
	NamesByIDs(ctx context.Context, ids []string) ([]models.NamedID, error)
	QualifiedForSubjects(ctx context.Context, subjectIDs []string) (map[string]models.Teacher, error)
}

type calendarReader interface {
	ListHolidays(ctx context.Context, from, to time.Time) ([]models.HolidayRecord, error)
	ListVacations(ctx context.Context, periodID string) ([]models.VacationRecord, error)
}

type generatedScheduleStore interface {
	LockPeriod(ctx context.Context, exec sqlx.ExtContext, periodID string) error
	DeleteByClassPeriod(ctx context.Context, exec sqlx.ExtContext, classID, periodID string) (int64, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.ScheduleEntry) error
	ListOccupancy(ctx context.Context, exec sqlx.ExtContext, periodID, excludeClassID string) ([]models.Occupancy, error)
	ListClassCells(ctx context.Context, exec sqlx.ExtContext, classID, periodID string) ([]models.Occupancy, error)
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	DefaultWeeks      int
	WeeklyGrade1Slots int
	Retry             database.RetryPolicy
}

// ScheduleGeneratorService builds class timetables and stores them.
type ScheduleGeneratorService struct {
	classes    schedulerClassReader
	subjects   schedulerSubjectReader
	teachers   schedulerTeacherReader
	calendar   calendarReader
	schedules  generatedScheduleStore
	complexity complexityResolver
	tx         txProvider
	validator  *validator.Validate
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ScheduleGeneratorConfig
}

// NewScheduleGeneratorService wires scheduler dependencies.
func NewScheduleGeneratorService(
	classes schedulerClassReader,
	subjects schedulerSubjectReader,
	teachers schedulerTeacherReader,
	calendar calendarReader,
	schedules generatedScheduleStore,
	complexity complexityResolver,
	tx txProvider,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg ScheduleGeneratorConfig,
) *ScheduleGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultWeeks <= 0 {
		cfg.DefaultWeeks = 20
	}
	return &ScheduleGeneratorService{
		classes:    classes,
		subjects:   subjects,
		teachers:   teachers,
		calendar:   calendar,
		schedules:  schedules,
		complexity: complexity,
		tx:         tx,
		validator:  validate,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// generationPlan is everything resolved before the grid is built. A non-empty
// rejection ends generation without touching stored entries.
type generationPlan struct {
	class     *models.Class
	period    *models.AcademicPeriod
	lessons   []timetable.Lesson
	warnings  []string
	rejection string
}

// Generate builds one weekly template and stores it as undated entries.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	started := time.Now()
	plan, err := s.prepare(ctx, req.ClassID, req.PeriodID, req.Curriculum)
	if err != nil {
		return nil, err
	}
	if plan.rejection != "" {
		return &dto.GenerateScheduleResponse{
			Message:  plan.rejection,
			Lessons:  []timetable.Placement{},
			Errors:   []string{plan.rejection},
			Warnings: nonNil(plan.warnings),
		}, nil
	}

	clear := req.ClearExisting == nil || *req.ClearExisting
	maxSlots := timetable.MaxSlotsPerDay(plan.class.Grade, timetable.WeeklyPath, s.cfg.WeeklyGrade1Slots)

	var week timetable.WeekResult
	err = database.WithRetry(ctx, s.cfg.Retry, func(ctx context.Context) error {
		return runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
			if err := s.schedules.LockPeriod(ctx, tx, plan.period.ID); err != nil {
				return err
			}
			busy, err := s.occupancy(ctx, tx, plan.class.ID, plan.period.ID, !clear)
			if err != nil {
				return err
			}
			if clear {
				if _, err := s.schedules.DeleteByClassPeriod(ctx, tx, plan.class.ID, plan.period.ID); err != nil {
					return err
				}
			}
			week = timetable.BuildWeek(timetable.WeekInput{MaxSlots: maxSlots, Lessons: plan.lessons, Busy: busy, HardestFirst: true})
			entries := make([]models.ScheduleEntry, 0, len(week.Grid.Placements()))
			for _, p := range week.Grid.Placements() {
				entries = append(entries, entryFor(plan, p))
			}
			return s.schedules.InsertBatch(ctx, tx, entries)
		})
	})
	if err != nil {
		return nil, internalError(err, "failed to store weekly timetable")
	}

	lessons := week.Grid.Placements()
	s.metrics.ObserveGeneration("weekly", week.Success(), len(lessons), len(week.Errors), time.Since(started))
	s.logger.Info("weekly timetable generated",
		zap.String("class_id", plan.class.ID),
		zap.String("academic_period_id", plan.period.ID),
		zap.Int("lessons", len(lessons)),
		zap.Int("unplaced", len(week.Errors)),
	)

	return &dto.GenerateScheduleResponse{
		Success:      week.Success(),
		Message:      summary(plan.class, len(lessons), len(week.Errors)),
		TotalLessons: len(lessons),
		Lessons:      lessons,
		Errors:       nonNil(week.Errors),
		Warnings:     append(nonNil(plan.warnings), week.Warnings...),
	}, nil
}

// GenerateSemester builds the weekly template, expands it over the requested
// weeks and replaces the class's stored entries for the period in one transaction.
func (s *ScheduleGeneratorService) GenerateSemester(ctx context.Context, req dto.GenerateSemesterRequest) (*dto.GenerateSemesterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester generation payload")
	}
	started := time.Now()
	plan, err := s.prepare(ctx, req.ClassID, req.PeriodID, req.Curriculum)
	if err != nil {
		return nil, err
	}
	if plan.rejection != "" {
		return &dto.GenerateSemesterResponse{
			Message:  plan.rejection,
			Template: []timetable.Placement{},
			Errors:   []string{plan.rejection},
			Warnings: nonNil(plan.warnings),
		}, nil
	}

	weeks := req.Weeks
	if weeks <= 0 {
		weeks = s.cfg.DefaultWeeks
	}
	start := plan.period.StartDate
	if req.StartDate != nil {
		start = req.StartDate.Time
	}
	start = timetable.DateOf(start)
	end := start.AddDate(0, 0, weeks*7-1)

	var (
		holidays  []models.HolidayRecord
		vacations []models.VacationRecord
	)
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		if holidays, err = s.calendar.ListHolidays(ctx, start, end); err != nil {
			return err
		}
		vacations, err = s.calendar.ListVacations(ctx, plan.period.ID)
		return err
	})
	if err != nil {
		return nil, internalError(err, "failed to load school calendar")
	}
	cal, calendarWarnings := timetable.NewCalendarIndex(holidays, vacations)
	for _, w := range calendarWarnings {
		s.logger.Warn("school calendar record skipped", zap.String("academic_period_id", plan.period.ID), zap.String("detail", w))
	}
	plan.warnings = append(plan.warnings, calendarWarnings...)

	maxSlots := timetable.MaxSlotsPerDay(plan.class.Grade, timetable.SemesterPath, 0)
	var (
		week  timetable.WeekResult
		dated []timetable.DatedLesson
	)
	err = database.WithRetry(ctx, s.cfg.Retry, func(ctx context.Context) error {
		return runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
			if err := s.schedules.LockPeriod(ctx, tx, plan.period.ID); err != nil {
				return err
			}
			busy, err := s.occupancy(ctx, tx, plan.class.ID, plan.period.ID, false)
			if err != nil {
				return err
			}
			if _, err := s.schedules.DeleteByClassPeriod(ctx, tx, plan.class.ID, plan.period.ID); err != nil {
				return err
			}
			week = timetable.BuildWeek(timetable.WeekInput{MaxSlots: maxSlots, Lessons: plan.lessons, Busy: busy})
			dated = timetable.ExpandSemester(week.Grid.Placements(), start, weeks, plan.class.Grade, cal)
			entries := make([]models.ScheduleEntry, 0, len(dated))
			for _, l := range dated {
				entry := entryFor(plan, l.Placement)
				weekNumber, date := l.Week, l.Date
				entry.WeekNumber = &weekNumber
				entry.LessonDate = &date
				entries = append(entries, entry)
			}
			return s.schedules.InsertBatch(ctx, tx, entries)
		})
	})
	if err != nil {
		return nil, internalError(err, "failed to store semester timetable")
	}

	s.metrics.ObserveGeneration("semester", week.Success(), len(dated), len(week.Errors), time.Since(started))
	s.logger.Info("semester timetable generated",
		zap.String("class_id", plan.class.ID),
		zap.String("academic_period_id", plan.period.ID),
		zap.Time("start", start),
		zap.Int("weeks", weeks),
		zap.Int("lessons", len(dated)),
		zap.Int("unplaced", len(week.Errors)),
	)

	return &dto.GenerateSemesterResponse{
		Success:          week.Success(),
		Partial:          !week.Success() && len(dated) > 0,
		Message:          summary(plan.class, len(dated), len(week.Errors)),
		TotalLessons:     len(dated),
		WeeksGenerated:   weeks,
		WeeksWithLessons: timetable.WeeksGenerated(dated),
		StartDate:        &start,
		Template:         week.Grid.Placements(),
		Errors:           nonNil(week.Errors),
		Warnings:         append(nonNil(plan.warnings), week.Warnings...),
	}, nil
}

// ClearSchedule removes every entry of a class in a period and returns how many were deleted.
func (s *ScheduleGeneratorService) ClearSchedule(ctx context.Context, classID, periodID string) (int64, error) {
	if classID == "" || periodID == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "class id and academic period id are required")
	}
	if _, err := s.loadClass(ctx, classID); err != nil {
		return 0, err
	}
	var deleted int64
	err := runInTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.schedules.LockPeriod(ctx, tx, periodID); err != nil {
			return err
		}
		var err error
		deleted, err = s.schedules.DeleteByClassPeriod(ctx, tx, classID, periodID)
		return err
	})
	if err != nil {
		return 0, internalError(err, "failed to clear timetable")
	}
	s.logger.Info("timetable cleared", zap.String("class_id", classID), zap.String("academic_period_id", periodID), zap.Int64("deleted", deleted))
	return deleted, nil
}

// StandardCurriculum previews the standard weekly plan for a grade. With a class
// id the plan is bound to that class's home-room teacher and room.
func (s *ScheduleGeneratorService) StandardCurriculum(ctx context.Context, grade int, classID string) (*dto.StandardCurriculumResponse, error) {
	if grade < 1 || grade > 11 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade must be between 1 and 11")
	}
	class := &models.Class{Grade: grade}
	if classID != "" {
		var err error
		if class, err = s.loadClass(ctx, classID); err != nil {
			return nil, err
		}
		if class.Grade != grade {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s is in grade %d", class.Name(), class.Grade))
		}
	}
	resolved, err := s.resolveStandard(ctx, class)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, item := range resolved {
		total += item.Hours
	}
	return &dto.StandardCurriculumResponse{Grade: grade, TotalHours: total, Subjects: resolved}, nil
}

func (s *ScheduleGeneratorService) prepare(ctx context.Context, classID, periodID string, items []dto.CurriculumItemRequest) (*generationPlan, error) {
	class, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	var period *models.AcademicPeriod
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		period, err = s.classes.FindPeriodByID(ctx, periodID)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "academic period not found", "failed to load academic period")
	}

	plan := &generationPlan{class: class, period: period}
	var curriculum []models.CurriculumItem
	if len(items) == 0 {
		if class.IsPrimary() && class.HomeTeacherID == nil {
			plan.rejection = fmt.Sprintf("class %s has no home-room teacher; assign one or provide a curriculum", class.Name())
			return plan, nil
		}
		resolved, err := s.resolveStandard(ctx, class)
		if err != nil {
			return nil, err
		}
		for _, r := range resolved {
			if r.Skipped != "" {
				plan.warnings = append(plan.warnings, fmt.Sprintf("%s skipped: %s", r.Name, r.Skipped))
				continue
			}
			curriculum = append(curriculum, models.CurriculumItem{SubjectID: r.SubjectID, TeacherID: r.TeacherID, RoomID: r.RoomID, Hours: r.Hours})
		}
	} else {
		for _, it := range items {
			item, err := models.NewCurriculumItem(it.SubjectID, it.TeacherID, it.RoomID, it.HoursPerWeek)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
			}
			if item.RoomID == nil {
				item.RoomID = class.HomeRoomID
			}
			curriculum = append(curriculum, item)
		}
	}
	if len(curriculum) == 0 {
		plan.rejection = fmt.Sprintf("no curriculum could be resolved for class %s", class.Name())
		return plan, nil
	}

	lessons, warnings, err := s.toLessons(ctx, class.Grade, curriculum)
	if err != nil {
		return nil, err
	}
	plan.lessons = lessons
	plan.warnings = append(plan.warnings, warnings...)
	return plan, nil
}

// toLessons attaches names and complexity to curriculum items in three batched
// reads. Ids missing from the catalogue fail the whole request as NotFound.
func (s *ScheduleGeneratorService) toLessons(ctx context.Context, grade int, curriculum []models.CurriculumItem) ([]timetable.Lesson, []string, error) {
	subjectIDs := make([]string, 0, len(curriculum))
	teacherIDs := make([]string, 0, len(curriculum))
	for _, item := range curriculum {
		subjectIDs = append(subjectIDs, item.SubjectID)
		teacherIDs = append(teacherIDs, item.TeacherID)
	}
	var subjectNames, teacherNames []models.NamedID
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		if subjectNames, err = s.subjects.NamesByIDs(ctx, unique(subjectIDs)); err != nil {
			return err
		}
		teacherNames, err = s.teachers.NamesByIDs(ctx, unique(teacherIDs))
		return err
	})
	if err != nil {
		return nil, nil, internalError(err, "failed to load subject and teacher names")
	}
	cx, err := s.complexity.Resolve(ctx, grade)
	if err != nil {
		return nil, nil, internalError(err, "failed to load subject complexity")
	}

	subjects, teachers := nameIndex(subjectNames), nameIndex(teacherNames)
	if err := unknownReferences(subjects, subjectIDs, teachers, teacherIDs); err != nil {
		return nil, nil, err
	}
	var warnings []string
	warned := map[string]struct{}{}
	lessons := make([]timetable.Lesson, 0, len(curriculum))
	for _, item := range curriculum {
		name := orID(subjects, item.SubjectID)
		score, rated := cx.Score(item.SubjectID)
		if _, done := warned[item.SubjectID]; !rated && !done {
			warned[item.SubjectID] = struct{}{}
			warnings = append(warnings, missingComplexityWarning(name))
		}
		lessons = append(lessons, timetable.Lesson{
			SubjectID:   item.SubjectID,
			SubjectName: name,
			TeacherID:   item.TeacherID,
			TeacherName: orID(teachers, item.TeacherID),
			RoomID:      item.RoomID,
			Score:       score,
			Hours:       item.Hours,
		})
	}
	return lessons, warnings, nil
}

// resolveStandard binds the standard plan of the class's grade to subject and teacher ids.
func (s *ScheduleGeneratorService) resolveStandard(ctx context.Context, class *models.Class) ([]models.ResolvedCurriculumItem, error) {
	plan := timetable.StandardCurriculum(class.Grade)
	names := make([]string, 0, len(plan))
	for _, subj := range plan {
		names = append(names, subj.Name)
	}

	var (
		subjects  []models.Subject
		qualified map[string]models.Teacher
		homeName  string
	)
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		if subjects, err = s.subjects.FindByNames(ctx, names); err != nil {
			return err
		}
		ids := make(map[string]string, len(subjects))
		for _, subj := range subjects {
			ids[subj.Name] = subj.ID
		}
		var lookup []string
		for _, subj := range plan {
			if id, ok := ids[subj.Name]; ok && !s.homeTeaches(class, subj) {
				lookup = append(lookup, id)
			}
		}
		if qualified, err = s.teachers.QualifiedForSubjects(ctx, lookup); err != nil {
			return err
		}
		if class.HomeTeacherID != nil {
			found, err := s.teachers.NamesByIDs(ctx, []string{*class.HomeTeacherID})
			if err != nil {
				return err
			}
			if len(found) > 0 {
				homeName = found[0].Name
			}
		}
		return nil
	})
	if err != nil {
		return nil, internalError(err, "failed to resolve standard curriculum")
	}

	ids := make(map[string]string, len(subjects))
	for _, subj := range subjects {
		ids[subj.Name] = subj.ID
	}
	out := make([]models.ResolvedCurriculumItem, 0, len(plan))
	for _, subj := range plan {
		item := models.ResolvedCurriculumItem{StandardSubject: subj, RoomID: class.HomeRoomID}
		id, ok := ids[subj.Name]
		switch {
		case !ok:
			item.Skipped = "subject is not in the catalogue"
		case s.homeTeaches(class, subj):
			item.SubjectID, item.TeacherID, item.TeacherName = id, *class.HomeTeacherID, homeName
		default:
			item.SubjectID = id
			if teacher, found := qualified[id]; found {
				item.TeacherID, item.TeacherName = teacher.ID, teacher.FullName
			} else {
				item.Skipped = "no qualified teacher"
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ScheduleGeneratorService) homeTeaches(class *models.Class, subj models.StandardSubject) bool {
	return class.HomeTeacherID != nil && timetable.TaughtByHomeTeacher(class.Grade, subj)
}

// occupancy collects cells other classes already use; keepOwn also blocks the
// class's own stored cells when they are not being replaced.
func (s *ScheduleGeneratorService) occupancy(ctx context.Context, exec sqlx.ExtContext, classID, periodID string, keepOwn bool) (*timetable.Busy, error) {
	others, err := s.schedules.ListOccupancy(ctx, exec, periodID, classID)
	if err != nil {
		return nil, err
	}
	busy := timetable.NewBusy(others)
	if keepOwn {
		own, err := s.schedules.ListClassCells(ctx, exec, classID, periodID)
		if err != nil {
			return nil, err
		}
		for _, cell := range own {
			busy.BlockClassCell(timetable.Cell{Day: cell.DayOfWeek, Slot: cell.Lesson})
		}
	}
	return busy, nil
}

func (s *ScheduleGeneratorService) loadClass(ctx context.Context, classID string) (*models.Class, error) {
	var class *models.Class
	err := s.read(ctx, func(ctx context.Context) error {
		var err error
		class, err = s.classes.FindByID(ctx, classID)
		return err
	})
	if err != nil {
		return nil, notFoundOr(err, "class not found", "failed to load class")
	}
	return class, nil
}

func (s *ScheduleGeneratorService) read(ctx context.Context, fn func(ctx context.Context) error) error {
	return database.WithRetry(ctx, s.cfg.Retry, fn)
}

func entryFor(plan *generationPlan, p timetable.Placement) models.ScheduleEntry {
	return models.ScheduleEntry{
		PeriodID:     plan.period.ID,
		ClassID:      plan.class.ID,
		SubjectID:    p.SubjectID,
		TeacherID:    p.TeacherID,
		RoomID:       p.RoomID,
		DayOfWeek:    p.Day,
		LessonNumber: p.Slot,
	}
}

func summary(class *models.Class, stored, unplaced int) string {
	if unplaced > 0 {
		return fmt.Sprintf("stored %d lessons for class %s; %d lessons could not be placed", stored, class.Name(), unplaced)
	}
	return fmt.Sprintf("stored %d lessons for class %s", stored, class.Name())
}

func nameIndex(rows []models.NamedID) map[string]string {
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Name
	}
	return out
}

// unknownReferences reports every subject and teacher id absent from its name index.
func unknownReferences(subjects map[string]string, subjectIDs []string, teachers map[string]string, teacherIDs []string) error {
	var parts []string
	if missing := missingIDs(subjects, subjectIDs); len(missing) > 0 {
		parts = append(parts, "subjects not found: "+strings.Join(missing, ", "))
	}
	if missing := missingIDs(teachers, teacherIDs); len(missing) > 0 {
		parts = append(parts, "teachers not found: "+strings.Join(missing, ", "))
	}
	if len(parts) == 0 {
		return nil
	}
	return appErrors.Clone(appErrors.ErrNotFound, strings.Join(parts, "; "))
}

func missingIDs(names map[string]string, ids []string) []string {
	var missing []string
	for _, id := range unique(ids) {
		if _, ok := names[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func orID(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

func unique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
