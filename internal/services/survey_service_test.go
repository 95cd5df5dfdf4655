package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/validator"
)

// fakeCache is an in-memory CacheService tracking hit sources.
type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = payload
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := f.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func (f *fakeCache) DeletePattern(_ context.Context, _ string) error {
	f.data = make(map[string][]byte)
	return nil
}

func newSurveyFixture() (SurveyService, *fakeRepository, *fakeCache) {
	repo := newFakeRepository()
	categories, questions := twoCategoryCatalog()
	repo.categories.items = categories
	repo.questions.items = questions

	cacheService := newFakeCache()
	service := NewSurveyService(repo, cacheService, validator.New(), testLogger())
	return service, repo, cacheService
}

func TestSurveyService_GetQuestionsCaches(t *testing.T) {
	service, repo, cacheService := newSurveyFixture()
	ctx := context.Background()

	questions, err := service.GetQuestions(ctx, "ss-1")
	require.NoError(t, err)
	assert.Len(t, questions, 4)
	assert.Contains(t, cacheService.data, "survey:questions:ss-1")

	// served from cache even if the repository goes away
	repo.questions.listErr = assert.AnError
	cached, err := service.GetQuestions(ctx, "ss-1")
	require.NoError(t, err)
	assert.Len(t, cached, 4)
}

func TestSurveyService_CreateQuestion(t *testing.T) {
	service, repo, cacheService := newSurveyFixture()
	ctx := context.Background()

	t.Run("assigns id and invalidates cache", func(t *testing.T) {
		_, err := service.GetQuestions(ctx, "ss-1")
		require.NoError(t, err)

		c1 := "cat-1"
		question := &models.Question{
			Prompt:       "New question?",
			CategoryID:   &c1,
			SubsectionID: "ss-1",
			Type:         models.QuestionTypeStandard,
		}
		require.NoError(t, service.CreateQuestion(ctx, question))

		assert.NotEmpty(t, question.ID)
		assert.NotContains(t, cacheService.data, "survey:questions:ss-1")
		assert.Len(t, repo.questions.items, 5)
	})

	t.Run("rejects a missing prompt", func(t *testing.T) {
		err := service.CreateQuestion(ctx, &models.Question{SubsectionID: "ss-1"})
		assert.True(t, IsValidation(err), "expected validation error, got %v", err)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		ghost := "ghost"
		err := service.CreateQuestion(ctx, &models.Question{
			Prompt:       "Orphan?",
			CategoryID:   &ghost,
			SubsectionID: "ss-1",
		})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestSurveyService_DeleteQuestion(t *testing.T) {
	service, _, _ := newSurveyFixture()
	ctx := context.Background()

	require.NoError(t, service.DeleteQuestion(ctx, "q1"))
	assert.ErrorIs(t, service.DeleteQuestion(ctx, "q1"), ErrQuestionNotFound)
}

func TestSurveyService_Categories(t *testing.T) {
	service, _, cacheService := newSurveyFixture()
	ctx := context.Background()

	categories, err := service.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Contains(t, cacheService.data, "survey:categories")

	require.NoError(t, service.CreateCategory(ctx, &models.Category{Name: "Benefits"}))
	assert.NotContains(t, cacheService.data, "survey:categories")

	assert.ErrorIs(t, service.DeleteCategory(ctx, "nope"), ErrCategoryNotFound)
}
