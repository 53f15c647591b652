package timetable

import (
	"time"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

// DatedLesson is a template placement materialized on a concrete date.
type DatedLesson struct {
	Placement
	Week int
	Date time.Time
}

type dayWeek struct{ day, week int }

// ExpandSemester repeats the weekly template for the given number of weeks and
// keeps only dates the calendar marks as school days for grade. A working
// Saturday that replaces a transferred weekday receives that weekday's lessons.
func ExpandSemester(template []Placement, start time.Time, weeks, grade int, cal *CalendarIndex) []DatedLesson {
	start = DateOf(start)
	var out []DatedLesson
	used := map[dayWeek]struct{}{}
	dated := map[string]struct{}{}

	for week := 1; week <= weeks; week++ {
		for _, p := range template {
			date := LessonDate(start, week, p.Day)
			if !cal.IsSchoolingDay(date, grade) {
				continue
			}
			out = append(out, DatedLesson{Placement: p, Week: week, Date: date})
			used[dayWeek{p.Day, week}] = struct{}{}
			dated[dayKey(date)] = struct{}{}
		}
	}

	if weeks <= 0 {
		return out
	}
	end := start.AddDate(0, 0, weeks*7-1)
	for _, sat := range cal.TransferredSaturdays(start, end) {
		if _, done := dated[dayKey(sat.Date)]; done || !cal.IsSchoolingDay(sat.Date, grade) {
			continue
		}
		day, week := sourceSlot(start, weeks, sat)
		if day < models.FirstWeekday || day > models.LastWeekday {
			continue
		}
		key := dayWeek{day, week}
		if _, taken := used[key]; taken {
			continue
		}
		for _, p := range template {
			if p.Day == day {
				out = append(out, DatedLesson{Placement: p, Week: week, Date: sat.Date})
			}
		}
		used[key] = struct{}{}
	}
	return out
}

// sourceSlot maps the transferred date back to the template weekday and week it
// would have occupied. Sources outside the window fall back to the calendar
// weekday in the Saturday's own week.
func sourceSlot(start time.Time, weeks int, sat TransferredSaturday) (int, int) {
	offset := daysBetween(start, sat.SourceDate)
	if offset >= 0 && offset < weeks*7 {
		return offset%7 + 1, offset/7 + 1
	}
	return int(sat.SourceDate.Weekday()), daysBetween(start, sat.Date)/7 + 1
}

func daysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// WeeksGenerated counts distinct weeks that received at least one lesson.
func WeeksGenerated(lessons []DatedLesson) int {
	weeks := map[int]struct{}{}
	for _, l := range lessons {
		weeks[l.Week] = struct{}{}
	}
	return len(weeks)
}
