// Package timetable holds the pure scheduling rules: complexity bands, the
// school calendar, the standard curriculum and the weekly grid builder.
package timetable

import (
	"fmt"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

// Path selects which slot cap applies to grade 1.
type Path int

const (
	// WeeklyPath builds a standalone weekly template.
	WeeklyPath Path = iota
	// SemesterPath builds the template that is expanded over a half-year.
	SemesterPath
)

// PreferredSlots lists the lessons a subject should ideally occupy, capped at maxSlots.
func PreferredSlots(score, maxSlots int) []int {
	var base []int
	switch {
	case score >= 10:
		base = []int{2, 3, 4}
	case score >= 7:
		base = []int{2, 3, 4, 5}
	case score <= 3:
		base = []int{1, 5, 6, 7}
	default:
		base = []int{1, 2, 3, 4, 5, 6, 7}
	}
	slots := make([]int, 0, len(base))
	for _, slot := range base {
		if slot <= maxSlots {
			slots = append(slots, slot)
		}
	}
	return slots
}

// PlacementWarning explains why a slot is pedagogically poor for a subject, or returns "".
func PlacementWarning(subject string, score, slot int) string {
	switch {
	case score >= 10 && (slot < 2 || slot > 4):
		return fmt.Sprintf("%s (complexity %d) is on lesson %d; lessons 2-4 are recommended", subject, score, slot)
	case score >= 7 && score <= 9 && (slot < 2 || slot > 5):
		return fmt.Sprintf("%s (complexity %d) is on lesson %d; lessons 2-5 are recommended", subject, score, slot)
	case score <= 3 && slot >= 2 && slot <= 4:
		return fmt.Sprintf("%s (complexity %d) is an easy subject on peak lesson %d; lessons 1 or 5+ are better", subject, score, slot)
	}
	return ""
}

// DailyLoadCeiling is the largest total complexity a class should carry in one day.
func DailyLoadCeiling(grade int) int {
	switch {
	case grade <= 4:
		return 60
	case grade <= 9:
		return 70
	default:
		return 80
	}
}

// MaxLessonsPerDay is the daily lesson count limit used by validation.
func MaxLessonsPerDay(grade int) int {
	switch {
	case grade == 1:
		return 4
	case grade <= 4:
		return 5
	case grade <= 9:
		return 6
	default:
		return 7
	}
}

// MaxSlotsPerDay is the grid height the builder fills. Grade 1 differs by path;
// weeklyGrade1 overrides the weekly cap when positive.
func MaxSlotsPerDay(grade int, path Path, weeklyGrade1 int) int {
	switch {
	case grade == 1 && path == WeeklyPath:
		if weeklyGrade1 > 0 {
			return weeklyGrade1
		}
		return 4
	case grade <= 4:
		return 5
	case grade <= 9:
		return 6
	default:
		return models.MaxLessonSlots
	}
}
