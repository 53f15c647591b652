package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

func weeklyHours(plan []models.StandardSubject) int {
	total := 0
	for _, s := range plan {
		total += s.Hours
	}
	return total
}

func TestStandardCurriculumWeeklyHours(t *testing.T) {
	for grade := 1; grade <= 11; grade++ {
		assert.NotEmpty(t, StandardCurriculum(grade), "grade %d", grade)
	}
	assert.Equal(t, 24, weeklyHours(StandardCurriculum(1)))
	assert.Equal(t, 29, weeklyHours(StandardCurriculum(2)))
	assert.Equal(t, 30, weeklyHours(StandardCurriculum(5)))
	assert.Equal(t, 37, weeklyHours(StandardCurriculum(10)))
	assert.Equal(t, 36, weeklyHours(StandardCurriculum(11)))
	assert.Nil(t, StandardCurriculum(12))
}

func TestStandardCurriculumReturnsCopy(t *testing.T) {
	plan := StandardCurriculum(2)
	plan[0].Hours = 99
	assert.Equal(t, 5, StandardCurriculum(2)[0].Hours)
	assert.Equal(t, 5, StandardCurriculum(3)[0].Hours)
}

func TestGradeFourAddsLifeSafety(t *testing.T) {
	three, four := StandardCurriculum(3), StandardCurriculum(4)
	assert.Len(t, four, len(three)+1)
	assert.Equal(t, LifeSafety, four[len(four)-1].Name)
}

func TestTaughtByHomeTeacher(t *testing.T) {
	assert.True(t, TaughtByHomeTeacher(2, models.StandardSubject{Name: Mathematics}))
	assert.False(t, TaughtByHomeTeacher(2, models.StandardSubject{Name: Music, NeedsSpecialist: true}))
	assert.False(t, TaughtByHomeTeacher(5, models.StandardSubject{Name: Mathematics}))
}
