package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-timetable-api/internal/models"
)

const insertBatchSize = 200

const scheduleColumns = `id, academic_period_id, class_id, subject_id, teacher_id, room_id, day_of_week, lesson_number, week_number, lesson_date, substitute_teacher_id, substitution_reason, created_by, created_at, updated_at`

// ScheduleRepository persists schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// LockPeriod serializes timetable writes for one academic period until the transaction ends.
func (r *ScheduleRepository) LockPeriod(ctx context.Context, exec sqlx.ExtContext, periodID string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "schedule:"+periodID); err != nil {
		return fmt.Errorf("lock period %s: %w", periodID, err)
	}
	return nil
}

// HasConflict reports whether another entry holds the same resource in the probed cell.
// Template entries (no week) collide with every week; dated entries only with the same week.
func (r *ScheduleRepository) HasConflict(ctx context.Context, exec sqlx.ExtContext, probe models.ConflictProbe) (bool, error) {
	var column string
	switch probe.Scope {
	case models.ConflictClass:
		column = "class_id"
	case models.ConflictTeacher:
		column = "teacher_id"
	case models.ConflictRoom:
		column = "room_id"
	default:
		return false, fmt.Errorf("unknown conflict scope %q", probe.Scope)
	}

	query := fmt.Sprintf(`SELECT EXISTS (
SELECT 1 FROM schedule_entries
WHERE academic_period_id = $1 AND %s = $2 AND day_of_week = $3 AND lesson_number = $4
  AND id <> $5
  AND (week_number IS NULL OR $6::int IS NULL OR week_number = $6::int))`, column)

	var exists bool
	if err := sqlx.GetContext(ctx, r.exec(exec), &exists, query,
		probe.PeriodID, probe.ResourceID, probe.DayOfWeek, probe.Lesson, probe.ExcludeID, probe.Week); err != nil {
		return false, fmt.Errorf("check %s conflict: %w", strings.ToLower(string(probe.Scope)), err)
	}
	return exists, nil
}

// ListDayEntries returns the class's entries on one weekday in the same week scope.
func (r *ScheduleRepository) ListDayEntries(ctx context.Context, exec sqlx.ExtContext, classID, periodID string, day int, week *int, excludeID string) ([]models.DayEntry, error) {
	const query = `SELECT id, subject_id FROM schedule_entries
WHERE class_id = $1 AND academic_period_id = $2 AND day_of_week = $3
  AND week_number IS NOT DISTINCT FROM $4::int AND id <> $5`
	var entries []models.DayEntry
	if err := sqlx.SelectContext(ctx, r.exec(exec), &entries, query, classID, periodID, day, week, excludeID); err != nil {
		return nil, fmt.Errorf("list day entries: %w", err)
	}
	return entries, nil
}

// ListOccupancy returns the distinct teacher/room cells used by other classes in the period.
func (r *ScheduleRepository) ListOccupancy(ctx context.Context, exec sqlx.ExtContext, periodID, excludeClassID string) ([]models.Occupancy, error) {
	const query = `SELECT DISTINCT teacher_id, room_id, day_of_week, lesson_number FROM schedule_entries
WHERE academic_period_id = $1 AND class_id <> $2`
	var cells []models.Occupancy
	if err := sqlx.SelectContext(ctx, r.exec(exec), &cells, query, periodID, excludeClassID); err != nil {
		return nil, fmt.Errorf("list period occupancy: %w", err)
	}
	return cells, nil
}

// ListClassCells returns the cells the class already fills in the period.
func (r *ScheduleRepository) ListClassCells(ctx context.Context, exec sqlx.ExtContext, classID, periodID string) ([]models.Occupancy, error) {
	const query = `SELECT DISTINCT teacher_id, room_id, day_of_week, lesson_number FROM schedule_entries
WHERE class_id = $1 AND academic_period_id = $2`
	var cells []models.Occupancy
	if err := sqlx.SelectContext(ctx, r.exec(exec), &cells, query, classID, periodID); err != nil {
		return nil, fmt.Errorf("list class cells: %w", err)
	}
	return cells, nil
}

// FindByID loads one entry.
func (r *ScheduleRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id string) (*models.ScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedule_entries WHERE id = $1`
	var entry models.ScheduleEntry
	if err := sqlx.GetContext(ctx, r.exec(exec), &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Insert stores a new entry, assigning id and timestamps.
func (r *ScheduleRepository) Insert(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	stamp(entry, time.Now().UTC())
	const query = `INSERT INTO schedule_entries (` + scheduleColumns + `) VALUES (:id, :academic_period_id, :class_id, :subject_id, :teacher_id, :room_id, :day_of_week, :lesson_number, :week_number, :lesson_date, :substitute_teacher_id, :substitution_reason, :created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry); err != nil {
		return fmt.Errorf("insert schedule entry: %w", err)
	}
	return nil
}

// InsertBatch stores entries in multi-row statements.
func (r *ScheduleRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, entries []models.ScheduleEntry) error {
	now := time.Now().UTC()
	for i := range entries {
		stamp(&entries[i], now)
	}
	const query = `INSERT INTO schedule_entries (` + scheduleColumns + `) VALUES (:id, :academic_period_id, :class_id, :subject_id, :teacher_id, :room_id, :day_of_week, :lesson_number, :week_number, :lesson_date, :substitute_teacher_id, :substitution_reason, :created_by, :created_at, :updated_at)`
	target := r.exec(exec)
	for start := 0; start < len(entries); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, entries[start:end]); err != nil {
			return fmt.Errorf("insert schedule batch: %w", err)
		}
	}
	return nil
}

// Update rewrites the placement columns of an entry. Class, period and week stay fixed.
func (r *ScheduleRepository) Update(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET subject_id = :subject_id, teacher_id = :teacher_id, room_id = :room_id,
day_of_week = :day_of_week, lesson_number = :lesson_number, lesson_date = :lesson_date, updated_at = :updated_at WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, entry)
	if err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return expectAffected(res)
}

// SetSubstitution records or clears (nil substitute) a replacement teacher.
func (r *ScheduleRepository) SetSubstitution(ctx context.Context, exec sqlx.ExtContext, id string, substituteID, reason *string) error {
	const query = `UPDATE schedule_entries SET substitute_teacher_id = $2, substitution_reason = $3, updated_at = $4 WHERE id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, id, substituteID, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set substitution: %w", err)
	}
	return expectAffected(res)
}

// Delete removes one entry.
func (r *ScheduleRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return expectAffected(res)
}

// DeleteByClassPeriod wipes a class timetable for a period.
func (r *ScheduleRepository) DeleteByClassPeriod(ctx context.Context, exec sqlx.ExtContext, classID, periodID string) (int64, error) {
	res, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_entries WHERE class_id = $1 AND academic_period_id = $2`, classID, periodID)
	if err != nil {
		return 0, fmt.Errorf("delete class schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete class schedule: %w", err)
	}
	return n, nil
}

// List returns entries joined with display names.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntryView, error) {
	var conditions []string
	var args []interface{}
	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.PeriodID != "" {
		add("e.academic_period_id = $%d", filter.PeriodID)
	}
	if filter.ClassID != "" {
		add("e.class_id = $%d", filter.ClassID)
	}
	if filter.TeacherID != "" {
		add("(e.teacher_id = $%[1]d OR e.substitute_teacher_id = $%[1]d)", filter.TeacherID)
	}
	if filter.Semester {
		conditions = append(conditions, "e.week_number IS NOT NULL")
		if filter.Week != nil {
			add("e.week_number = $%d", *filter.Week)
		}
		if filter.From != nil {
			add("e.lesson_date >= $%d", *filter.From)
		}
		if filter.To != nil {
			add("e.lesson_date <= $%d", *filter.To)
		}
	} else {
		conditions = append(conditions, "e.week_number IS NULL")
	}

	query := `SELECT e.id, e.academic_period_id, e.class_id, e.subject_id, e.teacher_id, e.room_id, e.day_of_week, e.lesson_number,
e.week_number, e.lesson_date, e.substitute_teacher_id, e.substitution_reason, e.created_by, e.created_at, e.updated_at,
c.grade AS class_grade, c.section AS class_section, s.name AS subject_name, t.full_name AS teacher_name,
rm.name AS room_name, st.full_name AS substitute_teacher_name
FROM schedule_entries e
JOIN classes c ON c.id = e.class_id
JOIN subjects s ON s.id = e.subject_id
JOIN teachers t ON t.id = e.teacher_id
LEFT JOIN classrooms rm ON rm.id = e.room_id
LEFT JOIN teachers st ON st.id = e.substitute_teacher_id
WHERE ` + strings.Join(conditions, " AND ") + `
ORDER BY e.lesson_date NULLS FIRST, e.day_of_week, e.lesson_number, c.grade, c.section`

	var entries []models.ScheduleEntryView
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

func stamp(entry *models.ScheduleEntry, now time.Time) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
