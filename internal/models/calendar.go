package models

import (
	"strconv"
	"strings"
	"time"
)

// HolidayRecord is a public holiday range, or a working day moved onto a weekend.
type HolidayRecord struct {
	ID                  string     `db:"id" json:"id"`
	Name                string     `db:"name" json:"name"`
	StartDate           time.Time  `db:"start_date" json:"start_date"`
	EndDate             *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsWorkingDay        bool       `db:"is_working_day" json:"is_working_day"`
	TransferredFromDate *time.Time `db:"transferred_from_date" json:"transferred_from_date,omitempty"`
}

// LastDate returns the inclusive end of the range; a missing end means a single day.
func (h HolidayRecord) LastDate() time.Time {
	if h.EndDate == nil || h.EndDate.Before(h.StartDate) {
		return h.StartDate
	}
	return *h.EndDate
}

// VacationRecord is a school break inside an academic period.
type VacationRecord struct {
	ID           string    `db:"id" json:"id"`
	PeriodID     string    `db:"academic_period_id" json:"academic_period_id"`
	Name         string    `db:"name" json:"name"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	ClassNumbers *string   `db:"class_numbers" json:"class_numbers,omitempty"`
}

// Grades parses ClassNumbers. A nil result means the vacation applies to every
// grade. Tokens that are not a grade between 1 and 11 are returned in rejected
// and ignored; a list with no usable token applies to no grade.
func (v VacationRecord) Grades() (grades []int, rejected []string) {
	if v.ClassNumbers == nil || strings.TrimSpace(*v.ClassNumbers) == "" {
		return nil, nil
	}
	grades = []int{}
	for _, part := range strings.Split(*v.ClassNumbers, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		grade, err := strconv.Atoi(part)
		if err != nil || grade < 1 || grade > 11 {
			rejected = append(rejected, part)
			continue
		}
		grades = append(grades, grade)
	}
	return grades, rejected
}
