package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/school-timetable-api/internal/models"
	"github.com/noah-isme/school-timetable-api/pkg/database"
)

type complexityReader interface {
	ComplexityByGrade(ctx context.Context, grade int) ([]models.ComplexityScore, error)
}

// ComplexityService resolves subject difficulty per grade. One grade table is
// loaded per call and cached in Redis.
type ComplexityService struct {
	repo   complexityReader
	cache  *CacheService
	retry  database.RetryPolicy
	logger *zap.Logger
}

// NewComplexityService wires the complexity lookup.
func NewComplexityService(repo complexityReader, cache *CacheService, retry database.RetryPolicy, logger *zap.Logger) *ComplexityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ComplexityService{repo: repo, cache: cache, retry: retry, logger: logger}
}

// Complexity is a resolved batch of scores.
type Complexity struct {
	scores map[string]int
}

// Score returns the subject score and whether it was rated.
func (c Complexity) Score(subjectID string) (int, bool) {
	score, ok := c.scores[subjectID]
	if !ok {
		return models.DefaultComplexity, false
	}
	return score, true
}

// Resolve loads the scores of a grade. Missing ratings fall back to the default
// score when read through Score.
func (s *ComplexityService) Resolve(ctx context.Context, grade int) (Complexity, error) {
	rows, err := remember(ctx, s.cache, fmt.Sprintf("complexity:grade:%d", grade), func(ctx context.Context) ([]models.ComplexityScore, error) {
		var rows []models.ComplexityScore
		err := database.WithRetry(ctx, s.retry, func(ctx context.Context) error {
			var err error
			rows, err = s.repo.ComplexityByGrade(ctx, grade)
			return err
		})
		return rows, err
	})
	if err != nil {
		return Complexity{}, fmt.Errorf("load complexity for grade %d: %w", grade, err)
	}
	scores := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.Score < models.MinComplexity || row.Score > models.MaxComplexity {
			s.logger.Warn("complexity score out of range", zap.String("subject_id", row.SubjectID), zap.Int("grade", grade), zap.Int("score", row.Score))
			continue
		}
		scores[row.SubjectID] = row.Score
	}
	return Complexity{scores: scores}, nil
}

func missingComplexityWarning(subject string) string {
	return fmt.Sprintf("no complexity rating for %s, using %d", subject, models.DefaultComplexity)
}
