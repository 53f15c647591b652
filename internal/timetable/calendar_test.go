package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func TestCalendarIndexHolidayRangeIsInclusive(t *testing.T) {
	cal, warnings := NewCalendarIndex([]models.HolidayRecord{
		{Name: "break", StartDate: day(time.January, 10), EndDate: ptr(day(time.January, 11))},
	}, nil)
	assert.Empty(t, warnings)

	assert.True(t, cal.IsSchoolingDay(day(time.January, 9), 5))
	assert.False(t, cal.IsSchoolingDay(day(time.January, 10), 5))
	assert.False(t, cal.IsSchoolingDay(day(time.January, 11), 5))
	assert.True(t, cal.IsSchoolingDay(day(time.January, 12), 5))
}

func TestCalendarIndexWeekends(t *testing.T) {
	cal, warnings := NewCalendarIndex([]models.HolidayRecord{
		{Name: "transfer", StartDate: day(time.January, 13), IsWorkingDay: true, TransferredFromDate: ptr(day(time.January, 8))},
	}, nil)
	assert.Empty(t, warnings)

	assert.False(t, cal.IsSchoolingDay(day(time.January, 14), 5), "sunday")
	assert.False(t, cal.IsSchoolingDay(day(time.January, 20), 5), "ordinary saturday")
	assert.True(t, cal.IsSchoolingDay(day(time.January, 13), 5), "working saturday")
	assert.False(t, cal.IsSchoolingDay(day(time.January, 8), 5), "transferred monday")
}

func TestCalendarIndexVacationGrades(t *testing.T) {
	cal, warnings := NewCalendarIndex(nil, []models.VacationRecord{
		{Name: "primary break", StartDate: day(time.February, 12), EndDate: day(time.February, 18), ClassNumbers: ptr("1,2")},
		{Name: "spring", StartDate: day(time.March, 25), EndDate: day(time.March, 31)},
	})
	assert.Empty(t, warnings)

	assert.False(t, cal.IsSchoolingDay(day(time.February, 14), 1))
	assert.False(t, cal.IsSchoolingDay(day(time.February, 14), 2))
	assert.True(t, cal.IsSchoolingDay(day(time.February, 14), 5))
	assert.True(t, cal.IsSchoolingDay(day(time.February, 19), 2))
	assert.False(t, cal.IsSchoolingDay(day(time.March, 25), 5))
	assert.False(t, cal.IsSchoolingDay(day(time.March, 25), 11))
}

func TestCalendarIndexSkipsUnreadableGrades(t *testing.T) {
	cal, warnings := NewCalendarIndex(nil, []models.VacationRecord{
		{Name: "extra", StartDate: day(time.March, 4), EndDate: day(time.March, 5), ClassNumbers: ptr("1-4, 3")},
		{Name: "typo", StartDate: day(time.March, 6), EndDate: day(time.March, 6), ClassNumbers: ptr("x")},
	})
	require.NotNil(t, cal)
	assert.Equal(t, []string{`vacation "extra": ignored grade "1-4"`, `vacation "typo": ignored grade "x"`}, warnings)

	assert.False(t, cal.IsSchoolingDay(day(time.March, 4), 3))
	assert.True(t, cal.IsSchoolingDay(day(time.March, 4), 1))
	assert.True(t, cal.IsSchoolingDay(day(time.March, 6), 3))
}

func TestLessonDate(t *testing.T) {
	start := day(time.January, 8)
	assert.Equal(t, day(time.January, 8), LessonDate(start, 1, 1))
	assert.Equal(t, day(time.January, 23), LessonDate(start, 3, 2))
	assert.Equal(t, day(time.January, 12), LessonDate(start.Add(13*time.Hour), 1, 5))
}

func TestDateInWeek(t *testing.T) {
	// 2024-01-13 is a Saturday; its week starts on Monday 8 January
	assert.Equal(t, day(time.January, 10), DateInWeek(day(time.January, 13), 3))
	assert.Equal(t, day(time.January, 8), DateInWeek(day(time.January, 14), 1))
	assert.Equal(t, day(time.January, 12), DateInWeek(day(time.January, 9).Add(20*time.Hour), 5))
}
