package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

func template() []Placement {
	return []Placement{
		{Cell: Cell{Day: 1, Slot: 1}, SubjectID: "math", TeacherID: "t1"},
		{Cell: Cell{Day: 2, Slot: 2}, SubjectID: "phys", TeacherID: "t2"},
	}
}

func TestExpandSemesterRepeatsTemplate(t *testing.T) {
	cal, warnings := NewCalendarIndex(nil, nil)
	assert.Empty(t, warnings)

	lessons := ExpandSemester(template(), day(time.January, 8), 3, 7, cal)
	require.Len(t, lessons, 6)
	assert.Equal(t, day(time.January, 22), lessons[4].Date)
	assert.Equal(t, 3, lessons[4].Week)
	assert.Equal(t, 3, WeeksGenerated(lessons))
}

func TestExpandSemesterSkipsHolidaysAndVacations(t *testing.T) {
	cal, warnings := NewCalendarIndex(
		[]models.HolidayRecord{{Name: "day off", StartDate: day(time.January, 9)}},
		[]models.VacationRecord{{Name: "winter", StartDate: day(time.January, 15), EndDate: day(time.January, 21)}},
	)
	assert.Empty(t, warnings)

	lessons := ExpandSemester(template(), day(time.January, 8), 2, 7, cal)
	require.Len(t, lessons, 1)
	assert.Equal(t, "math", lessons[0].SubjectID)
	assert.Equal(t, day(time.January, 8), lessons[0].Date)
}

func TestExpandSemesterMovesTransferredMondayToSaturday(t *testing.T) {
	cal, warnings := NewCalendarIndex([]models.HolidayRecord{
		{Name: "transfer", StartDate: day(time.January, 13), IsWorkingDay: true, TransferredFromDate: ptr(day(time.January, 8))},
	}, nil)
	assert.Empty(t, warnings)

	lessons := ExpandSemester(template(), day(time.January, 8), 2, 7, cal)
	require.Len(t, lessons, 4)

	var saturday []DatedLesson
	for _, l := range lessons {
		assert.NotEqual(t, day(time.January, 8), l.Date, "transferred monday must be empty")
		if l.Date.Equal(day(time.January, 13)) {
			saturday = append(saturday, l)
		}
	}
	require.Len(t, saturday, 1)
	assert.Equal(t, "math", saturday[0].SubjectID)
	assert.Equal(t, 1, saturday[0].Day)
	assert.Equal(t, 1, saturday[0].Week)
}

func TestExpandSemesterIgnoresWorkingSaturdayOnVacation(t *testing.T) {
	cal, warnings := NewCalendarIndex(
		[]models.HolidayRecord{{Name: "transfer", StartDate: day(time.January, 13), IsWorkingDay: true, TransferredFromDate: ptr(day(time.January, 8))}},
		[]models.VacationRecord{{Name: "primary", StartDate: day(time.January, 13), EndDate: day(time.January, 13), ClassNumbers: ptr("2")}},
	)
	assert.Empty(t, warnings)

	lessons := ExpandSemester(template(), day(time.January, 8), 1, 2, cal)
	require.Len(t, lessons, 1)
	assert.Equal(t, "phys", lessons[0].SubjectID)
}
