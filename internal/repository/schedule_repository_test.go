package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryHasConflictTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	week := 3
	mock.ExpectQuery(`SELECT EXISTS \(\s*SELECT 1 FROM schedule_entries\s*WHERE academic_period_id = \$1 AND teacher_id = \$2`).
		WithArgs("period-1", "teacher-1", 2, 4, "entry-1", &week).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := repo.HasConflict(context.Background(), nil, models.ConflictProbe{
		Scope: models.ConflictTeacher, PeriodID: "period-1", DayOfWeek: 2, Lesson: 4,
		ResourceID: "teacher-1", ExcludeID: "entry-1", Week: &week,
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryHasConflictUnknownScope(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	_, err := repo.HasConflict(context.Background(), nil, models.ConflictProbe{Scope: "BUILDING"})
	assert.Error(t, err)
}

func TestScheduleRepositoryListDayEntries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_id FROM schedule_entries")).
		WithArgs("class-1", "period-1", 1, nil, "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_id"}).AddRow("e1", "math").AddRow("e2", "art"))

	entries, err := repo.ListDayEntries(context.Background(), nil, "class-1", "period-1", 1, nil, "")
	require.NoError(t, err)
	assert.Equal(t, []models.DayEntry{{ID: "e1", SubjectID: "math"}, {ID: "e2", SubjectID: "art"}}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_entries")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry, err := models.NewScheduleEntry("period-1", "class-1", "math", "teacher-1", nil, 1, 2)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), nil, entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryInsertBatchChunks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	entries := make([]models.ScheduleEntry, insertBatchSize+1)
	for i := range entries {
		entries[i] = models.ScheduleEntry{PeriodID: "p", ClassID: "c", SubjectID: "s", TeacherID: "t", DayOfWeek: 1, LessonNumber: 1}
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_entries")).WillReturnResult(sqlmock.NewResult(0, insertBatchSize))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_entries")).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.InsertBatch(context.Background(), nil, entries))
	assert.NotEmpty(t, entries[insertBatchSize].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteByClassPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries WHERE class_id = $1 AND academic_period_id = $2")).
		WithArgs("class-1", "period-1").
		WillReturnResult(sqlmock.NewResult(0, 42))

	n, err := repo.DeleteByClassPeriod(context.Background(), nil, "class-1", "period-1")
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryLockPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("schedule:period-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.LockPeriod(context.Background(), nil, "period-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListSemesterFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	week := 2
	from := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	date := from.AddDate(0, 0, 7)
	cols := []string{"id", "academic_period_id", "class_id", "subject_id", "teacher_id", "room_id", "day_of_week", "lesson_number",
		"week_number", "lesson_date", "substitute_teacher_id", "substitution_reason", "created_by", "created_at", "updated_at",
		"class_grade", "class_section", "subject_name", "teacher_name", "room_name", "substitute_teacher_name"}
	mock.ExpectQuery(`WHERE e.academic_period_id = \$1 AND e.class_id = \$2 AND e.week_number IS NOT NULL AND e.week_number = \$3 AND e.lesson_date >= \$4`).
		WithArgs("period-1", "class-1", 2, from).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("e1", "period-1", "class-1", "math", "t1", nil, 1, 2,
			2, date, nil, nil, nil, time.Now(), time.Now(), 5, "A", "Mathematics", "Ivanova", nil, nil))

	list, err := repo.List(context.Background(), models.ScheduleFilter{
		PeriodID: "period-1", ClassID: "class-1", Week: &week, From: &from, Semester: true,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mathematics", list[0].SubjectName)
	assert.Equal(t, 2, *list[0].WeekNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
