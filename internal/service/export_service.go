package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
	"github.com/noah-isme/school-timetable-api/pkg/export"
)

type scheduleLister interface {
	List(ctx context.Context, query dto.ScheduleQuery, semester bool) ([]models.ScheduleEntryView, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a class's semester timetable as CSV, PDF or XLSX.
type ExportService struct {
	schedules scheduleLister
	renderers map[string]export.Renderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the built-in renderers.
func NewExportService(schedules scheduleLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedules: schedules,
		renderers: map[string]export.Renderer{
			"csv":  export.CSVRenderer{},
			"pdf":  export.PDFRenderer{},
			"xlsx": export.XLSXRenderer{},
		},
		logger: logger,
	}
}

// ExportSemester renders the generated lessons matching query. Format defaults to xlsx.
func (s *ExportService) ExportSemester(ctx context.Context, query dto.ScheduleQuery) (*ExportFile, error) {
	if query.ClassID == "" || query.PeriodID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id and academic_period_id are required")
	}
	format := strings.ToLower(query.Format)
	if format == "" {
		format = "xlsx"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", query.Format))
	}

	query.Format = format
	entries, err := s.schedules.List(ctx, query, true)
	if err != nil {
		return nil, err
	}
	sheet := semesterSheet(entries)
	data, err := renderer.Render(sheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	s.logger.Debug("semester timetable exported", zap.String("class_id", query.ClassID), zap.String("format", format), zap.Int("rows", len(sheet.Rows)))

	name := "timetable"
	if len(entries) > 0 {
		name = "timetable-" + strconv.Itoa(entries[0].ClassGrade) + entries[0].ClassSection
	}
	return &ExportFile{
		Filename:    name + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func semesterSheet(entries []models.ScheduleEntryView) export.Sheet {
	sheet := export.Sheet{
		Title:   "Semester timetable",
		Headers: []string{"Date", "Week", "Day", "Lesson", "Subject", "Teacher", "Room", "Substitute"},
		Rows:    make([][]string, 0, len(entries)),
	}
	if len(entries) > 0 {
		sheet.Title = fmt.Sprintf("Semester timetable, class %d%s", entries[0].ClassGrade, entries[0].ClassSection)
	}
	for _, e := range entries {
		var date, week string
		day := timetable.WeekdayName(e.DayOfWeek)
		if e.LessonDate != nil {
			date = e.LessonDate.Format("2006-01-02")
			day = e.LessonDate.Weekday().String()
		}
		if e.WeekNumber != nil {
			week = strconv.Itoa(*e.WeekNumber)
		}
		sheet.Rows = append(sheet.Rows, []string{
			date,
			week,
			day,
			strconv.Itoa(e.LessonNumber),
			e.SubjectName,
			e.TeacherName,
			deref(e.RoomName),
			deref(e.SubstituteTeacherName),
		})
	}
	return sheet
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
