package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-timetable-api/internal/middleware"
	"github.com/noah-isme/school-timetable-api/internal/service"
	"github.com/noah-isme/school-timetable-api/pkg/response"
)

func actorID(c *gin.Context) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// writeError renders err, attaching the validator verdict when a write was rejected.
func writeError(c *gin.Context, err error) {
	var rejected *service.ScheduleRejectedError
	if errors.As(err, &rejected) {
		response.ErrorWithData(c, err, rejected.Result)
		return
	}
	response.Error(c, err)
}
