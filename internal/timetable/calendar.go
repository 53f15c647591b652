package timetable

import (
	"fmt"
	"time"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

const dayLayout = "2006-01-02"

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// LessonDate places a template weekday into a given semester week.
func LessonDate(start time.Time, week, weekday int) time.Time {
	return DateOf(start).AddDate(0, 0, (week-1)*7+(weekday-1))
}

// DateInWeek returns the given weekday (1 = Monday) of the Monday-based week
// that contains date.
func DateInWeek(date time.Time, weekday int) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	return DateOf(date).AddDate(0, 0, weekday-1-offset)
}

type vacationRange struct {
	from, to time.Time
	grades   map[int]struct{}
}

// CalendarIndex answers "is this a school day" for the holidays and vacations it was built from.
type CalendarIndex struct {
	holidays         map[string]struct{}
	transferred      map[string]struct{}
	workingSaturdays map[string]time.Time
	vacations        []vacationRange
}

// NewCalendarIndex expands holiday ranges day by day and parses vacation grade
// lists. Unreadable grade tokens are skipped and reported as warnings.
func NewCalendarIndex(holidays []models.HolidayRecord, vacations []models.VacationRecord) (*CalendarIndex, []string) {
	idx := &CalendarIndex{
		holidays:         make(map[string]struct{}),
		transferred:      make(map[string]struct{}),
		workingSaturdays: make(map[string]time.Time),
	}
	for _, h := range holidays {
		from, to := DateOf(h.StartDate), DateOf(h.LastDate())
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			if h.IsWorkingDay {
				var source time.Time
				if h.TransferredFromDate != nil {
					source = DateOf(*h.TransferredFromDate)
				}
				idx.workingSaturdays[dayKey(day)] = source
			} else {
				idx.holidays[dayKey(day)] = struct{}{}
			}
		}
		if h.TransferredFromDate != nil {
			idx.transferred[dayKey(DateOf(*h.TransferredFromDate))] = struct{}{}
		}
	}
	var warnings []string
	for _, v := range vacations {
		grades, rejected := v.Grades()
		for _, token := range rejected {
			warnings = append(warnings, fmt.Sprintf("vacation %q: ignored grade %q", v.Name, token))
		}
		r := vacationRange{from: DateOf(v.StartDate), to: DateOf(v.EndDate)}
		if grades != nil {
			r.grades = make(map[int]struct{}, len(grades))
			for _, g := range grades {
				r.grades[g] = struct{}{}
			}
		}
		idx.vacations = append(idx.vacations, r)
	}
	return idx, warnings
}

// IsSchoolingDay reports whether a class of the given grade has lessons on date.
func (c *CalendarIndex) IsSchoolingDay(date time.Time, grade int) bool {
	date = DateOf(date)
	key := dayKey(date)
	switch date.Weekday() {
	case time.Sunday:
		return false
	case time.Saturday:
		if _, ok := c.workingSaturdays[key]; !ok {
			return false
		}
	}
	if _, ok := c.holidays[key]; ok {
		return false
	}
	if _, ok := c.transferred[key]; ok {
		return false
	}
	return !c.onVacation(date, grade)
}

func (c *CalendarIndex) onVacation(date time.Time, grade int) bool {
	for _, v := range c.vacations {
		if date.Before(v.from) || date.After(v.to) {
			continue
		}
		if v.grades == nil {
			return true
		}
		if _, ok := v.grades[grade]; ok {
			return true
		}
	}
	return false
}

// TransferredSaturday is a working Saturday that takes over the lessons of SourceDate.
type TransferredSaturday struct {
	Date       time.Time
	SourceDate time.Time
}

// TransferredSaturdays lists working Saturdays with a known source day inside [from, to].
func (c *CalendarIndex) TransferredSaturdays(from, to time.Time) []TransferredSaturday {
	from, to = DateOf(from), DateOf(to)
	var out []TransferredSaturday
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if day.Weekday() != time.Saturday {
			continue
		}
		source, ok := c.workingSaturdays[dayKey(day)]
		if !ok || source.IsZero() {
			continue
		}
		out = append(out, TransferredSaturday{Date: day, SourceDate: source})
	}
	return out
}
