package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/internal/service"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
	"github.com/noah-isme/school-timetable-api/pkg/response"
)

type scheduleManager interface {
	List(ctx context.Context, query dto.ScheduleQuery, semester bool) ([]models.ScheduleEntryView, error)
	Validate(ctx context.Context, req dto.ScheduleEntryRequest) (*service.ValidationResult, error)
	Create(ctx context.Context, req dto.ScheduleEntryRequest, actorID string) (*dto.ScheduleWriteResponse, error)
	Update(ctx context.Context, id string, req dto.ScheduleEntryRequest) (*dto.ScheduleWriteResponse, error)
	UpdateLesson(ctx context.Context, id string, req dto.UpdateLessonRequest) (*dto.ScheduleWriteResponse, error)
	Delete(ctx context.Context, id string) error
	SetSubstitution(ctx context.Context, req dto.SubstitutionRequest) (*models.ScheduleEntry, error)
	ClearSubstitution(ctx context.Context, id string) error
}

type semesterExporter interface {
	ExportSemester(ctx context.Context, query dto.ScheduleQuery) (*service.ExportFile, error)
}

// ScheduleHandler exposes manual timetable endpoints.
type ScheduleHandler struct {
	service scheduleManager
	exports semesterExporter
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(svc *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List weekly template entries
// @Tags Schedule
// @Produce json
// @Param academic_period_id query string false "Academic period"
// @Param class_id query string false "Class"
// @Param teacher_id query string false "Teacher (assigned or substitute)"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListSemester godoc
// @Summary List generated semester lessons
// @Tags Schedule
// @Produce json
// @Param academic_period_id query string false "Academic period"
// @Param class_id query string false "Class"
// @Param teacher_id query string false "Teacher"
// @Param week query int false "Week number"
// @Param from query string false "First date (YYYY-MM-DD)"
// @Param to query string false "Last date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/semester [get]
func (h *ScheduleHandler) ListSemester(c *gin.Context) {
	h.list(c, true)
}

func (h *ScheduleHandler) list(c *gin.Context, semester bool) {
	var query dto.ScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	entries, err := h.service.List(c.Request.Context(), query, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"count": len(entries)})
}

// ExportSemester godoc
// @Summary Download a class semester timetable
// @Tags Schedule
// @Produce application/octet-stream
// @Param academic_period_id query string true "Academic period"
// @Param class_id query string true "Class"
// @Param format query string false "csv, pdf or xlsx (default)"
// @Success 200 {file} file
// @Router /schedule/semester/export [get]
func (h *ScheduleHandler) ExportSemester(c *gin.Context) {
	var query dto.ScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	file, err := h.exports.ExportSemester(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Validate godoc
// @Summary Check a schedule entry without storing it
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleEntryRequest true "Candidate entry"
// @Success 200 {object} response.Envelope
// @Router /schedule/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Create godoc
// @Summary Create a schedule entry
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleEntryRequest true "Entry"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, res)
}

// Update godoc
// @Summary Move or reassign a schedule entry
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body dto.ScheduleEntryRequest true "Entry"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedule/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// UpdateLesson godoc
// @Summary Change subject, teacher or room of an entry
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Entry ID"
// @Param payload body dto.UpdateLessonRequest true "Lesson fields"
// @Success 200 {object} response.Envelope
// @Router /schedule/lesson/{id} [put]
func (h *ScheduleHandler) UpdateLesson(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.service.UpdateLesson(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Delete godoc
// @Summary Delete a schedule entry
// @Tags Schedule
// @Param id path string true "Entry ID"
// @Success 204
// @Router /schedule/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SetSubstitution godoc
// @Summary Assign a substitute teacher
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.SubstitutionRequest true "Substitution"
// @Success 200 {object} response.Envelope
// @Router /schedule/substitution [post]
func (h *ScheduleHandler) SetSubstitution(c *gin.Context) {
	var req dto.SubstitutionRequest
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.service.SetSubstitution(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// ClearSubstitution godoc
// @Summary Remove a substitution
// @Tags Schedule
// @Param id path string true "Entry ID"
// @Success 204
// @Router /schedule/substitution/{id} [delete]
func (h *ScheduleHandler) ClearSubstitution(c *gin.Context) {
	if err := h.service.ClearSubstitution(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
