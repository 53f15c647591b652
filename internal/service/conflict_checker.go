package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

type conflictStore interface {
	HasConflict(ctx context.Context, exec sqlx.ExtContext, probe models.ConflictProbe) (bool, error)
}

// ConflictChecker answers whether a class, teacher or room is already booked in a cell.
type ConflictChecker struct {
	store conflictStore
}

// NewConflictChecker wraps the schedule store.
func NewConflictChecker(store conflictStore) *ConflictChecker {
	return &ConflictChecker{store: store}
}

// HasConflict probes one scope. An empty resource id (an unset room) never conflicts.
func (c *ConflictChecker) HasConflict(ctx context.Context, exec sqlx.ExtContext, probe models.ConflictProbe) (bool, error) {
	if probe.ResourceID == "" {
		return false, nil
	}
	return c.store.HasConflict(ctx, exec, probe)
}

// Check returns the scopes entry collides on, in class, teacher, room order.
func (c *ConflictChecker) Check(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) ([]models.ConflictScope, error) {
	base := models.ConflictProbe{
		PeriodID:  entry.PeriodID,
		DayOfWeek: entry.DayOfWeek,
		Lesson:    entry.LessonNumber,
		ExcludeID: entry.ID,
		Week:      entry.WeekNumber,
	}
	room := ""
	if entry.RoomID != nil {
		room = *entry.RoomID
	}
	var hits []models.ConflictScope
	for _, p := range []struct {
		scope models.ConflictScope
		id    string
	}{
		{models.ConflictClass, entry.ClassID},
		{models.ConflictTeacher, entry.TeacherID},
		{models.ConflictRoom, room},
	} {
		probe := base
		probe.Scope = p.scope
		probe.ResourceID = p.id
		found, err := c.HasConflict(ctx, exec, probe)
		if err != nil {
			return nil, err
		}
		if found {
			hits = append(hits, p.scope)
		}
	}
	return hits, nil
}
