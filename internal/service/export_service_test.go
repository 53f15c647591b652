package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-timetable-api/internal/dto"
	"github.com/noah-isme/school-timetable-api/internal/models"
	appErrors "github.com/noah-isme/school-timetable-api/pkg/errors"
)

type listerStub struct {
	entries  []models.ScheduleEntryView
	semester bool
}

func (s *listerStub) List(_ context.Context, _ dto.ScheduleQuery, semester bool) ([]models.ScheduleEntryView, error) {
	s.semester = semester
	return s.entries, nil
}

func semesterView() models.ScheduleEntryView {
	week := 2
	date := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	room, sub := "201", "Petrov"
	return models.ScheduleEntryView{
		ScheduleEntry:         models.ScheduleEntry{DayOfWeek: 2, LessonNumber: 3, WeekNumber: &week, LessonDate: &date},
		ClassGrade:            7,
		ClassSection:          "B",
		SubjectName:           "Algebra",
		TeacherName:           "Ivanova",
		RoomName:              &room,
		SubstituteTeacherName: &sub,
	}
}

func TestExportSemesterCSV(t *testing.T) {
	lister := &listerStub{entries: []models.ScheduleEntryView{semesterView()}}
	svc := NewExportService(lister, nil)

	file, err := svc.ExportSemester(context.Background(), dto.ScheduleQuery{ClassID: "c7", PeriodID: "p1", Format: "CSV"})

	require.NoError(t, err)
	assert.True(t, lister.semester)
	assert.Equal(t, "timetable-7B.csv", file.Filename)
	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-09-10", "2", "Tuesday", "3", "Algebra", "Ivanova", "201", "Petrov"}, records[1])
}

func TestExportSemesterDefaultsToXLSX(t *testing.T) {
	svc := NewExportService(&listerStub{}, nil)

	file, err := svc.ExportSemester(context.Background(), dto.ScheduleQuery{ClassID: "c7", PeriodID: "p1"})

	require.NoError(t, err)
	assert.Equal(t, "timetable.xlsx", file.Filename)
	assert.NotEmpty(t, file.Data)
}

func TestExportSemesterValidation(t *testing.T) {
	svc := NewExportService(&listerStub{}, nil)

	_, err := svc.ExportSemester(context.Background(), dto.ScheduleQuery{ClassID: "c7"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.ExportSemester(context.Background(), dto.ScheduleQuery{ClassID: "c7", PeriodID: "p1", Format: "docx"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func signToken(t *testing.T, secret string, claims models.JWTClaims, method jwt.SigningMethod) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenServiceValidatesClaims(t *testing.T) {
	svc := NewTokenService("secret", "school-portal")
	claims := models.JWTClaims{
		UserID: "u1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "school-portal",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	got, err := svc.ValidateToken(signToken(t, "secret", claims, jwt.SigningMethodHS256))
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = svc.ValidateToken(signToken(t, "other", claims, jwt.SigningMethodHS256))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	claims.Issuer = "elsewhere"
	_, err = svc.ValidateToken(signToken(t, "secret", claims, jwt.SigningMethodHS256))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceExpired(t *testing.T) {
	svc := NewTokenService("secret", "")
	claims := models.JWTClaims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}

	_, err := svc.ValidateToken(signToken(t, "secret", claims, jwt.SigningMethodHS256))

	require.Error(t, err)
	assert.Equal(t, "token expired", appErrors.FromError(err).Message)
}
