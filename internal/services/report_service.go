package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
)

// ===== SCORE AGGREGATION =====

// UserScore is one user's aggregate over a subsection.
type UserScore struct {
	UserID     string  `json:"user_id"`
	Name       string  `json:"name,omitempty"`
	Score      int     `json:"score"`
	Possible   int     `json:"possible"`
	Percentage float64 `json:"percentage"`
	Answered   int     `json:"answered"`
}

// InvalidResponse flags a stored response the aggregator could not attribute.
// Invalid rows are excluded from scores and surfaced as diagnostics instead
// of failing the report.
type InvalidResponse struct {
	ResponseID uint   `json:"response_id"`
	UserID     string `json:"user_id,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Reason     string `json:"reason"`
}

// ScoreTally is an earned-over-possible pair with its display percentage.
type ScoreTally struct {
	Score      int     `json:"score"`
	Possible   int     `json:"possible"`
	Percentage float64 `json:"percentage"`
}

// AggregateResult is the pure outcome of scoring one subsection's responses.
type AggregateResult struct {
	Users   []*UserScore
	Overall ScoreTally
	Invalid []InvalidResponse
}

// AggregateScores folds stored responses into per-user and overall totals.
// An answered question adds its weight to the user's possible total only for
// scorable types; descriptive and file-upload responses never enter either
// side of the tally. Correctness is recomputed against the catalog rather
// than trusting the stored score. A user with no scorable answers gets 0%
// rather than a division by zero.
func AggregateScores(questions []*models.Question, responses []*models.ResponseRecord) *AggregateResult {
	byID := make(map[string]*models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	users := make(map[string]*UserScore)
	result := &AggregateResult{}

	for _, response := range responses {
		if response.UserID == "" {
			result.Invalid = append(result.Invalid, InvalidResponse{
				ResponseID: response.ID,
				QuestionID: response.QuestionID,
				Reason:     "response has no user",
			})
			continue
		}
		question, ok := byID[response.QuestionID]
		if !ok {
			result.Invalid = append(result.Invalid, InvalidResponse{
				ResponseID: response.ID,
				UserID:     response.UserID,
				QuestionID: response.QuestionID,
				Reason:     "question no longer in catalog",
			})
			continue
		}

		score, exists := users[response.UserID]
		if !exists {
			score = &UserScore{UserID: response.UserID}
			users[response.UserID] = score
		}
		score.Answered++

		if !question.Type.Scorable() {
			continue
		}
		weight := question.Weight()
		score.Possible += weight
		result.Overall.Possible += weight
		if question.IsCorrect(response.Answer) {
			score.Score += weight
			result.Overall.Score += weight
		}
	}

	for _, score := range users {
		score.Percentage = percentage(score.Score, score.Possible)
		result.Users = append(result.Users, score)
	}
	sort.Slice(result.Users, func(i, j int) bool {
		return result.Users[i].UserID < result.Users[j].UserID
	})
	result.Overall.Percentage = percentage(result.Overall.Score, result.Overall.Possible)

	return result
}

// percentage rounds score/possible to two decimals, as displayed.
func percentage(score, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return math.Round(float64(score)/float64(possible)*100*100) / 100
}

// ===== REPORT SERVICE =====

// SubsectionReport is the reporting view over one subsection.
type SubsectionReport struct {
	SubsectionID string            `json:"subsection_id"`
	Overall      ScoreTally        `json:"overall"`
	Users        []*UserScore      `json:"users"`
	Invalid      []InvalidResponse `json:"invalid,omitempty"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

type ReportService interface {
	// GetSubsectionReport aggregates every stored response of a subsection.
	GetSubsectionReport(ctx context.Context, subsectionID string) (*SubsectionReport, error)

	// GetUserResponses lists one user's stored responses for review.
	GetUserResponses(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.ResponseRecord, error)

	// ExportSubsectionReport renders the report as a spreadsheet.
	ExportSubsectionReport(ctx context.Context, subsectionID string) ([]byte, error)
}

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) GetSubsectionReport(ctx context.Context, subsectionID string) (*SubsectionReport, error) {
	questions, err := s.repo.Question().GetBySubsection(ctx, subsectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	responses, err := s.repo.Response().GetBySubsection(ctx, subsectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	aggregate := AggregateScores(questions, responses)
	for _, invalid := range aggregate.Invalid {
		s.logger.Warn("excluded invalid response from report",
			"subsection_id", subsectionID,
			"response_id", invalid.ResponseID,
			"reason", invalid.Reason)
	}

	s.fillUserNames(ctx, aggregate.Users)

	return &SubsectionReport{
		SubsectionID: subsectionID,
		Overall:      aggregate.Overall,
		Users:        aggregate.Users,
		Invalid:      aggregate.Invalid,
		GeneratedAt:  time.Now(),
	}, nil
}

func (s *reportService) GetUserResponses(ctx context.Context, userID string, filters repositories.ResponseFilters) ([]*models.ResponseRecord, error) {
	return s.repo.Response().GetByUser(ctx, userID, filters)
}

// fillUserNames resolves display names best-effort; a missing user row leaves
// the name blank rather than failing the report.
func (s *reportService) fillUserNames(ctx context.Context, scores []*UserScore) {
	for _, score := range scores {
		user, err := s.repo.User().GetByID(ctx, score.UserID)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				s.logger.Warn("failed to resolve user name", "user_id", score.UserID, "error", err)
			}
			continue
		}
		score.Name = user.Name
	}
}

// ===== SPREADSHEET EXPORT =====

const reportSheetName = "Results"

func (s *reportService) ExportSubsectionReport(ctx context.Context, subsectionID string) ([]byte, error) {
	report, err := s.GetSubsectionReport(ctx, subsectionID)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer func() {
		if err := file.Close(); err != nil {
			s.logger.Warn("failed to close export file", "error", err)
		}
	}()

	index, err := file.NewSheet(reportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		s.logger.Warn("failed to remove default sheet", "error", err)
	}

	headers := []string{"User ID", "Name", "Score", "Possible", "Percentage", "Answered"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(reportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, score := range report.Users {
		values := []interface{}{
			score.UserID,
			score.Name,
			score.Score,
			score.Possible,
			score.Percentage,
			score.Answered,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := file.SetCellValue(reportSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	s.logger.Info("exported subsection report",
		"subsection_id", subsectionID,
		"users", len(report.Users),
		"invalid", len(report.Invalid))

	return buffer.Bytes(), nil
}
