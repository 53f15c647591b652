package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/service"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
	"github.com/noah-isme/school-timetable-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
	GenerateSemester(ctx context.Context, req dto.GenerateSemesterRequest) (*dto.GenerateSemesterResponse, error)
	ClearSchedule(ctx context.Context, classID, periodID string) (int64, error)
	StandardCurriculum(ctx context.Context, grade int, classID string) (*dto.StandardCurriculumResponse, error)
}

// ScheduleGeneratorHandler exposes timetable generation endpoints.
type ScheduleGeneratorHandler struct {
	service scheduleGenerator
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc}
}

// Generate godoc
// @Summary Generate a weekly timetable template
// @Description Builds one week for the class and stores it as undated entries. Unplaced lessons are reported in errors.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// GenerateSemester godoc
// @Summary Generate a semester timetable
// @Description Replaces the class's lessons for the period with the weekly template expanded over the school calendar.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateSemesterRequest true "Semester payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/generate-semester [post]
func (h *ScheduleGeneratorHandler) GenerateSemester(c *gin.Context) {
	var req dto.GenerateSemesterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.GenerateSemester(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// ClearSchedule godoc
// @Summary Delete all lessons of a class in a period
// @Tags Scheduler
// @Produce json
// @Param classId path string true "Class ID"
// @Param periodId path string true "Academic period ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/classes/{classId}/periods/{periodId} [delete]
func (h *ScheduleGeneratorHandler) ClearSchedule(c *gin.Context) {
	deleted, err := h.service.ClearSchedule(c.Request.Context(), c.Param("classId"), c.Param("periodId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

// StandardCurriculum godoc
// @Summary Preview the standard curriculum for a grade
// @Tags Scheduler
// @Produce json
// @Param grade path int true "Grade 1-11"
// @Param class_id query string false "Bind to this class's home-room teacher and room"
// @Success 200 {object} response.Envelope
// @Router /schedule/standard-curriculum/{grade} [get]
func (h *ScheduleGeneratorHandler) StandardCurriculum(c *gin.Context) {
	grade, err := strconv.Atoi(c.Param("grade"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "grade must be a number"))
		return
	}
	res, err := h.service.StandardCurriculum(c.Request.Context(), grade, c.Query("class_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
