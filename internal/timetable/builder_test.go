package timetable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

func lesson(id string, score, hours int, teacher string) Lesson {
	return Lesson{SubjectID: id, SubjectName: id, TeacherID: teacher, TeacherName: teacher, Score: score, Hours: hours}
}

func TestBuildWeekHardSubjectOnPeakLessonsOncePerDay(t *testing.T) {
	res := BuildWeek(WeekInput{MaxSlots: 6, Lessons: []Lesson{lesson("math", 11, 5, "t1")}})

	require.True(t, res.Success())
	placements := res.Grid.Placements()
	require.Len(t, placements, 5)
	days := map[int]bool{}
	for _, p := range placements {
		assert.GreaterOrEqual(t, p.Slot, 2)
		assert.LessOrEqual(t, p.Slot, 4)
		assert.False(t, days[p.Day], "math twice on day %d", p.Day)
		days[p.Day] = true
	}
	assert.Empty(t, res.Warnings)
}

func TestBuildWeekFillsCapacity(t *testing.T) {
	var lessons []Lesson
	for i, score := range []int{11, 9, 6, 5, 3, 2} {
		lessons = append(lessons, lesson(fmt.Sprintf("s%d", i), score, 5, fmt.Sprintf("t%d", i)))
	}
	res := BuildWeek(WeekInput{MaxSlots: 6, Lessons: lessons})

	assert.True(t, res.Success(), res.Errors)
	assert.Len(t, res.Grid.Placements(), 30)
}

func TestBuildWeekReportsOverflow(t *testing.T) {
	res := BuildWeek(WeekInput{
		MaxSlots: MaxSlotsPerDay(1, WeeklyPath, 0),
		Lessons: []Lesson{
			lesson("reading", 5, 20, "t1"),
			lesson("music", 2, 2, "t2"),
		},
	})

	assert.False(t, res.Success())
	assert.Len(t, res.Grid.Placements(), 20)
	assert.Equal(t, []string{"could not place lesson: music", "could not place lesson: music"}, res.Errors)
}

func TestBuildWeekRespectsBusyTeacher(t *testing.T) {
	var occupied []models.Occupancy
	for d := 1; d <= 5; d++ {
		occupied = append(occupied, models.Occupancy{TeacherID: "t1", DayOfWeek: d, Lesson: 2})
	}
	res := BuildWeek(WeekInput{MaxSlots: 6, Lessons: []Lesson{lesson("math", 11, 3, "t1")}, Busy: NewBusy(occupied)})

	require.True(t, res.Success())
	for _, p := range res.Grid.Placements() {
		assert.Equal(t, 3, p.Slot)
	}
}

func TestBuildWeekRespectsBusyRoomAndClassCell(t *testing.T) {
	room := "lab"
	busy := NewBusy([]models.Occupancy{{TeacherID: "other", RoomID: &room, DayOfWeek: 1, Lesson: 2}})
	busy.BlockClassCell(Cell{Day: 2, Slot: 2})

	chem := lesson("chem", 11, 1, "t1")
	chem.RoomID = &room
	res := BuildWeek(WeekInput{MaxSlots: 6, Lessons: []Lesson{chem}, Busy: busy})

	require.Len(t, res.Grid.Placements(), 1)
	assert.Equal(t, Cell{Day: 3, Slot: 2}, res.Grid.Placements()[0].Cell)
}

func TestBuildWeekWarnsOnRepeatedSubject(t *testing.T) {
	res := BuildWeek(WeekInput{MaxSlots: 6, Lessons: []Lesson{lesson("bio", 5, 6, "t1")}})

	require.True(t, res.Success())
	assert.Len(t, res.Grid.Placements(), 6)
	assert.Contains(t, res.Warnings, "bio appears more than once on Monday")
}

func TestBuildWeekHardestFirst(t *testing.T) {
	lessons := []Lesson{lesson("geo", 8, 1, "t1"), lesson("math", 11, 1, "t2")}

	res := BuildWeek(WeekInput{MaxSlots: 6, Lessons: lessons, HardestFirst: true})
	p, ok := res.Grid.At(Cell{Day: 1, Slot: 2})
	require.True(t, ok)
	assert.Equal(t, "math", p.SubjectID)

	res = BuildWeek(WeekInput{MaxSlots: 6, Lessons: lessons})
	p, ok = res.Grid.At(Cell{Day: 1, Slot: 2})
	require.True(t, ok)
	assert.Equal(t, "geo", p.SubjectID)
}

func TestGridWithDoesNotMutate(t *testing.T) {
	g := NewGrid(5)
	next := g.With(Placement{Cell: Cell{Day: 1, Slot: 1}, SubjectID: "math"})

	_, ok := g.At(Cell{Day: 1, Slot: 1})
	assert.False(t, ok)
	assert.Equal(t, 1, next.SubjectCount(1, "math"))
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Monday", WeekdayName(1))
	assert.Equal(t, "Friday", WeekdayName(5))
}
