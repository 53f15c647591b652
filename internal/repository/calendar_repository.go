package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

// CalendarRepository reads holidays and vacations.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a new calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListHolidays returns records touching [from, to], including working days whose
// transferred source date falls in the window.
func (r *CalendarRepository) ListHolidays(ctx context.Context, from, to time.Time) ([]models.HolidayRecord, error) {
	const query = `SELECT id, name, start_date, end_date, is_working_day, transferred_from_date FROM holidays
WHERE (start_date <= $2 AND COALESCE(end_date, start_date) >= $1)
   OR (transferred_from_date BETWEEN $1 AND $2)
ORDER BY start_date`
	var holidays []models.HolidayRecord
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// ListVacations returns the breaks of an academic period.
func (r *CalendarRepository) ListVacations(ctx context.Context, periodID string) ([]models.VacationRecord, error) {
	const query = `SELECT id, academic_period_id, name, start_date, end_date, class_numbers FROM vacations
WHERE academic_period_id = $1 ORDER BY start_date`
	var vacations []models.VacationRecord
	if err := r.db.SelectContext(ctx, &vacations, query, periodID); err != nil {
		return nil, fmt.Errorf("list vacations: %w", err)
	}
	return vacations, nil
}
