package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
)

type catalogStub struct {
	namesStub
	subjects []models.Subject
}

func (s catalogStub) FindByNames(context.Context, []string) ([]models.Subject, error) {
	return s.subjects, nil
}

type staffStub struct {
	namesStub
	qualified map[string]models.Teacher
}

func (s staffStub) QualifiedForSubjects(context.Context, []string) (map[string]models.Teacher, error) {
	return s.qualified, nil
}

type calendarStub struct {
	holidays  []models.HolidayRecord
	vacations []models.VacationRecord
}

func (s calendarStub) ListHolidays(context.Context, time.Time, time.Time) ([]models.HolidayRecord, error) {
	return s.holidays, nil
}

func (s calendarStub) ListVacations(context.Context, string) ([]models.VacationRecord, error) {
	return s.vacations, nil
}

type generatedStoreStub struct {
	occupied  []models.Occupancy
	own       []models.Occupancy
	inserted  []models.ScheduleEntry
	batches   []int
	calls     []string
	cleared   int
	ownListed bool
}

func (s *generatedStoreStub) LockPeriod(context.Context, sqlx.ExtContext, string) error { return nil }

func (s *generatedStoreStub) DeleteByClassPeriod(context.Context, sqlx.ExtContext, string, string) (int64, error) {
	s.cleared++
	s.calls = append(s.calls, "delete")
	return 12, nil
}

func (s *generatedStoreStub) InsertBatch(_ context.Context, _ sqlx.ExtContext, entries []models.ScheduleEntry) error {
	s.inserted = append(s.inserted, entries...)
	s.batches = append(s.batches, len(entries))
	s.calls = append(s.calls, "insert")
	return nil
}

func (s *generatedStoreStub) ListOccupancy(context.Context, sqlx.ExtContext, string, string) ([]models.Occupancy, error) {
	return s.occupied, nil
}

func (s *generatedStoreStub) ListClassCells(context.Context, sqlx.ExtContext, string, string) ([]models.Occupancy, error) {
	s.ownListed = true
	return s.own, nil
}

var semesterStart = time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC) // Monday

func newGenerator(t *testing.T, store *generatedStoreStub, cal calendarStub, withTx bool) *ScheduleGeneratorService {
	t.Helper()
	home := "t-home"
	classes := classStub{
		classes: map[string]*models.Class{
			"c5": {ID: "c5", Grade: 5, Section: "B"},
			"c2": {ID: "c2", Grade: 2, Section: "A"},
			"c3": {ID: "c3", Grade: 3, Section: "A", HomeTeacherID: &home},
		},
		periods: map[string]*models.AcademicPeriod{
			"p1": {ID: "p1", Name: "Autumn", Semester: 1, StartDate: semesterStart, EndDate: semesterStart.AddDate(0, 4, 0)},
		},
	}
	names := namesStub{"math": "Mathematics", "pe": "Physical Education", "t1": "Ivanova", "t2": "Petrov"}
	var tx txProvider
	if withTx {
		db, mock := newTxMock(t)
		mock.MatchExpectationsInOrder(false)
		for i := 0; i < 4; i++ {
			mock.ExpectBegin()
			mock.ExpectCommit()
		}
		tx = db
	}
	return NewScheduleGeneratorService(
		classes,
		catalogStub{namesStub: names},
		staffStub{namesStub: names},
		cal,
		store,
		complexityStub{"math": 11},
		tx,
		nil,
		nil,
		nil,
		ScheduleGeneratorConfig{DefaultWeeks: 20, Retry: retryNone},
	)
}

func curriculum() []dto.CurriculumItemRequest {
	return []dto.CurriculumItemRequest{
		{SubjectID: "math", TeacherID: "t1", HoursPerWeek: 5},
		{SubjectID: "pe", TeacherID: "t2", HoursPerWeek: 2},
	}
}

func TestGenerateWeeklyStoresTemplate(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, true)

	res, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{ClassID: "c5", PeriodID: "p1", Curriculum: curriculum()})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 7, res.TotalLessons)
	assert.Empty(t, res.Errors)
	assert.Contains(t, res.Warnings, missingComplexityWarning("Physical Education"))
	assert.Equal(t, 1, store.cleared)
	assert.False(t, store.ownListed)
	require.Len(t, store.inserted, 7)
	for _, e := range store.inserted {
		assert.Nil(t, e.WeekNumber)
		assert.Nil(t, e.LessonDate)
		assert.Equal(t, "c5", e.ClassID)
		if e.SubjectID == "math" {
			assert.GreaterOrEqual(t, e.LessonNumber, 2)
			assert.LessOrEqual(t, e.LessonNumber, 4)
		}
	}
}

func TestGenerateWeeklyKeepsExistingWhenAsked(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, true)
	keep := false

	_, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{ClassID: "c5", PeriodID: "p1", Curriculum: curriculum(), ClearExisting: &keep})

	require.NoError(t, err)
	assert.Zero(t, store.cleared)
	assert.True(t, store.ownListed)
}

func TestGenerateRejectsPrimaryClassWithoutHomeTeacher(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, false)

	res, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{ClassID: "c2", PeriodID: "p1"})

	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "no home-room teacher")
	assert.Zero(t, store.cleared)
	assert.Empty(t, store.inserted)
}

func TestGenerateSemesterRejectsPrimaryClassWithoutHomeTeacher(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, false)

	res, err := svc.GenerateSemester(context.Background(), dto.GenerateSemesterRequest{ClassID: "c2", PeriodID: "p1"})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.Partial)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "no home-room teacher")
	assert.Zero(t, res.TotalLessons)
	assert.Zero(t, store.cleared)
	assert.Empty(t, store.inserted)
}

func TestGenerateUnknownCurriculumReferences(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, false)
	items := []dto.CurriculumItemRequest{
		{SubjectID: "ghost-subj", TeacherID: "ghost", HoursPerWeek: 2},
		{SubjectID: "math", TeacherID: "t1", HoursPerWeek: 3},
	}

	_, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{ClassID: "c5", PeriodID: "p1", Curriculum: items})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, "subjects not found: ghost-subj; teachers not found: ghost", appErr.Message)
	assert.Zero(t, store.cleared)
	assert.Empty(t, store.inserted)

	_, err = svc.GenerateSemester(context.Background(), dto.GenerateSemesterRequest{ClassID: "c5", PeriodID: "p1", Curriculum: items[:1], Weeks: 1})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Zero(t, store.cleared)
	assert.Empty(t, store.inserted)
}

func TestGenerateUnknownClass(t *testing.T) {
	svc := newGenerator(t, &generatedStoreStub{}, calendarStub{}, false)

	_, err := svc.Generate(context.Background(), dto.GenerateScheduleRequest{ClassID: "nope", PeriodID: "p1"})

	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGenerateSemesterSkipsHolidays(t *testing.T) {
	holiday := models.HolidayRecord{ID: "h1", Name: "Founders Day", StartDate: semesterStart.AddDate(0, 0, 2)}
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{holidays: []models.HolidayRecord{holiday}}, true)

	res, err := svc.GenerateSemester(context.Background(), dto.GenerateSemesterRequest{ClassID: "c5", PeriodID: "p1", Curriculum: curriculum(), Weeks: 2})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Partial)
	require.Len(t, res.Template, 7)
	wednesday := 0
	for _, p := range res.Template {
		if p.Day == 3 {
			wednesday++
		}
	}
	assert.Equal(t, 14-wednesday, res.TotalLessons)
	assert.Equal(t, 2, res.WeeksGenerated)
	assert.Equal(t, 2, res.WeeksWithLessons)
	require.NotNil(t, res.StartDate)
	assert.True(t, semesterStart.Equal(*res.StartDate))
	require.Len(t, store.inserted, res.TotalLessons)
	for _, e := range store.inserted {
		require.NotNil(t, e.WeekNumber)
		require.NotNil(t, e.LessonDate)
		assert.False(t, e.LessonDate.Equal(holiday.StartDate))
		assert.Equal(t, timetable.LessonDate(semesterStart, *e.WeekNumber, e.DayOfWeek), *e.LessonDate)
	}
}

func TestGenerateSemesterReplacesPreviousRun(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, true)
	req := dto.GenerateSemesterRequest{ClassID: "c5", PeriodID: "p1", Curriculum: curriculum(), Weeks: 2}

	first, err := svc.GenerateSemester(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.GenerateSemester(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"delete", "insert", "delete", "insert"}, store.calls)
	assert.Equal(t, 2, store.cleared)
	require.Len(t, store.batches, 2)
	assert.Equal(t, 14, first.TotalLessons)
	assert.Equal(t, first.TotalLessons, second.TotalLessons)
	assert.Equal(t, []int{14, 14}, store.batches)
}

func TestGenerateSemesterWarnsOnUnreadableVacationGrades(t *testing.T) {
	grades := "1-4"
	vacation := models.VacationRecord{ID: "v1", PeriodID: "p1", Name: "extra", StartDate: semesterStart, EndDate: semesterStart.AddDate(0, 0, 4), ClassNumbers: &grades}
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{vacations: []models.VacationRecord{vacation}}, true)

	res, err := svc.GenerateSemester(context.Background(), dto.GenerateSemesterRequest{ClassID: "c5", PeriodID: "p1", Curriculum: curriculum(), Weeks: 1})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Contains(t, res.Warnings, `vacation "extra": ignored grade "1-4"`)
	assert.Equal(t, 7, res.TotalLessons)
}

func TestGenerateSemesterPartialWhenTeacherBooked(t *testing.T) {
	var occupied []models.Occupancy
	for day := 1; day <= 5; day++ {
		for lesson := 1; lesson <= 7; lesson++ {
			occupied = append(occupied, models.Occupancy{TeacherID: "t1", DayOfWeek: day, Lesson: lesson})
		}
	}
	store := &generatedStoreStub{occupied: occupied}
	svc := newGenerator(t, store, calendarStub{}, true)

	res, err := svc.GenerateSemester(context.Background(), dto.GenerateSemesterRequest{ClassID: "c5", PeriodID: "p1", Curriculum: curriculum(), Weeks: 1})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.True(t, res.Partial)
	assert.Len(t, res.Errors, 5)
	assert.Equal(t, 2, res.TotalLessons)
	assert.Len(t, store.inserted, 2)
}

func TestClearSchedule(t *testing.T) {
	store := &generatedStoreStub{}
	svc := newGenerator(t, store, calendarStub{}, true)

	deleted, err := svc.ClearSchedule(context.Background(), "c5", "p1")
	require.NoError(t, err)
	assert.EqualValues(t, 12, deleted)

	_, err = svc.ClearSchedule(context.Background(), "", "p1")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStandardCurriculumPreview(t *testing.T) {
	svc := newGenerator(t, &generatedStoreStub{}, calendarStub{}, false)

	res, err := svc.StandardCurriculum(context.Background(), 5, "")
	require.NoError(t, err)
	plan := timetable.StandardCurriculum(5)
	require.Len(t, res.Subjects, len(plan))
	for _, item := range res.Subjects {
		assert.Equal(t, "subject is not in the catalogue", item.Skipped)
	}

	_, err = svc.StandardCurriculum(context.Background(), 12, "")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.StandardCurriculum(context.Background(), 6, "c5")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
