package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intranet-suite/survey-service/internal/models"
)

func TestAggregateScores(t *testing.T) {
	c1 := "cat-1"
	correct := "yes"
	questions := []*models.Question{
		{ID: "q1", CorrectOption: &correct, CategoryID: &c1, Type: models.QuestionTypeStandard},
		{ID: "q2", CorrectOption: &correct, CategoryID: &c1, Type: models.QuestionTypeStandard, MaxScore: 2},
		{ID: "q3", CategoryID: &c1, Type: models.QuestionTypeDescriptive},
		{ID: "q4", CategoryID: &c1, Type: models.QuestionTypeFileUpload},
	}

	t.Run("per user totals and rounding", func(t *testing.T) {
		responses := []*models.ResponseRecord{
			{ID: 1, UserID: "alice", QuestionID: "q1", Answer: "yes", Score: 1},
			{ID: 2, UserID: "alice", QuestionID: "q2", Answer: "no", Score: 0},
			{ID: 3, UserID: "alice", QuestionID: "q3", Answer: "thoughts", Score: 0},
			{ID: 4, UserID: "bob", QuestionID: "q1", Answer: "yes", Score: 1},
			// stale stored score: correctness is recomputed from the answer
			{ID: 5, UserID: "bob", QuestionID: "q2", Answer: "yes", Score: 0},
		}

		result := AggregateScores(questions, responses)

		require.Len(t, result.Users, 2)

		alice := result.Users[0]
		assert.Equal(t, "alice", alice.UserID)
		assert.Equal(t, 1, alice.Score)
		// only the q1 and q2 answers count toward the denominator
		assert.Equal(t, 3, alice.Possible)
		assert.Equal(t, 3, alice.Answered)
		assert.InDelta(t, 33.33, alice.Percentage, 0.001)

		bob := result.Users[1]
		assert.Equal(t, 3, bob.Score)
		assert.Equal(t, 3, bob.Possible)
		assert.InDelta(t, 100.0, bob.Percentage, 0.001)

		assert.Equal(t, 4, result.Overall.Score)
		assert.Equal(t, 6, result.Overall.Possible)
		assert.InDelta(t, 66.67, result.Overall.Percentage, 0.001)
	})

	t.Run("invalid responses become diagnostics", func(t *testing.T) {
		responses := []*models.ResponseRecord{
			{ID: 1, QuestionID: "q1", Answer: "yes", Score: 1},
			{ID: 2, UserID: "alice", QuestionID: "gone", Answer: "yes", Score: 1},
			{ID: 3, UserID: "alice", QuestionID: "q1", Answer: "yes", Score: 1},
		}

		result := AggregateScores(questions, responses)

		require.Len(t, result.Invalid, 2)
		assert.Equal(t, uint(1), result.Invalid[0].ResponseID)
		assert.Equal(t, "response has no user", result.Invalid[0].Reason)
		assert.Equal(t, "question no longer in catalog", result.Invalid[1].Reason)

		// the valid row still counts
		require.Len(t, result.Users, 1)
		assert.Equal(t, 1, result.Users[0].Score)
		assert.Equal(t, 1, result.Users[0].Possible)
		assert.Equal(t, 1, result.Overall.Possible)
	})

	t.Run("no scorable questions yields zero percent", func(t *testing.T) {
		descriptiveOnly := []*models.Question{
			{ID: "q3", CategoryID: &c1, Type: models.QuestionTypeDescriptive},
		}
		responses := []*models.ResponseRecord{
			{ID: 1, UserID: "alice", QuestionID: "q3", Answer: "text"},
		}

		result := AggregateScores(descriptiveOnly, responses)

		require.Len(t, result.Users, 1)
		assert.Equal(t, 0, result.Users[0].Possible)
		assert.Equal(t, 0.0, result.Users[0].Percentage)
		assert.Equal(t, 0.0, result.Overall.Percentage)
	})

	t.Run("empty input", func(t *testing.T) {
		result := AggregateScores(nil, nil)
		assert.Equal(t, ScoreTally{}, result.Overall)
		assert.Empty(t, result.Users)
		assert.Empty(t, result.Invalid)
	})
}

func TestReportService_GetSubsectionReport(t *testing.T) {
	repo := newFakeRepository()
	c1 := "cat-1"
	correct := "yes"
	repo.questions.items = []*models.Question{
		{ID: "q1", CorrectOption: &correct, CategoryID: &c1, SubsectionID: "ss-1", Type: models.QuestionTypeStandard},
	}
	repo.responses.records = []*models.ResponseRecord{
		{ID: 1, UserID: "alice", QuestionID: "q1", Answer: "yes", Score: 1, SubsectionID: "ss-1"},
	}
	repo.users.users["alice"] = &models.User{ID: "alice", Name: "Alice Doe"}

	service := NewReportService(repo, testLogger())
	report, err := service.GetSubsectionReport(context.Background(), "ss-1")
	require.NoError(t, err)

	assert.Equal(t, "ss-1", report.SubsectionID)
	assert.Equal(t, 1, report.Overall.Possible)
	assert.InDelta(t, 100.0, report.Overall.Percentage, 0.001)
	require.Len(t, report.Users, 1)
	assert.Equal(t, "Alice Doe", report.Users[0].Name)
	assert.InDelta(t, 100.0, report.Users[0].Percentage, 0.001)
}

func TestReportService_ExportSubsectionReport(t *testing.T) {
	repo := newFakeRepository()
	c1 := "cat-1"
	correct := "yes"
	repo.questions.items = []*models.Question{
		{ID: "q1", CorrectOption: &correct, CategoryID: &c1, SubsectionID: "ss-1", Type: models.QuestionTypeStandard},
	}
	repo.responses.records = []*models.ResponseRecord{
		{ID: 1, UserID: "alice", QuestionID: "q1", Answer: "yes", Score: 1, SubsectionID: "ss-1"},
		{ID: 2, UserID: "bob", QuestionID: "q1", Answer: "no", Score: 0, SubsectionID: "ss-1"},
	}

	service := NewReportService(repo, testLogger())
	payload, err := service.ExportSubsectionReport(context.Background(), "ss-1")
	require.NoError(t, err)
	assert.NotEmpty(t, payload)

	// xlsx files are zip archives
	assert.Equal(t, byte('P'), payload[0])
	assert.Equal(t, byte('K'), payload[1])
}
