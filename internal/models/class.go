package models

import (
	"strconv"
	"time"
)

// Class is a school class. Grades 1-4 are primary.
type Class struct {
	ID            string  `db:"id" json:"id"`
	Grade         int     `db:"grade" json:"grade"`
	Section       string  `db:"section" json:"section"`
	HomeTeacherID *string `db:"home_teacher_id" json:"home_teacher_id,omitempty"`
	HomeRoomID    *string `db:"home_room_id" json:"home_room_id,omitempty"`
}

// Name renders the usual "5A" label.
func (c Class) Name() string {
	return strconv.Itoa(c.Grade) + c.Section
}

// IsPrimary reports grades 1-4, taught mostly by the home-room teacher.
func (c Class) IsPrimary() bool {
	return c.Grade >= 1 && c.Grade <= 4
}

// AcademicPeriod is a half-year the timetable is generated for.
type AcademicPeriod struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Semester  int       `db:"semester" json:"semester"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
}
