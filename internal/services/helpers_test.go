package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/intranet-suite/survey-service/internal/cache"
	"github.com/intranet-suite/survey-service/internal/config"
	"github.com/intranet-suite/survey-service/internal/events"
	"github.com/intranet-suite/survey-service/internal/models"
	"github.com/intranet-suite/survey-service/internal/repositories"
	"gorm.io/gorm"
)

// ===== FAKE REPOSITORY =====

type fakeRepository struct {
	questions  *fakeQuestionRepo
	categories *fakeCategoryRepo
	responses  *fakeResponseRepo
	users      *fakeUserRepo
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		questions:  &fakeQuestionRepo{},
		categories: &fakeCategoryRepo{},
		responses:  &fakeResponseRepo{},
		users:      &fakeUserRepo{users: make(map[string]*models.User)},
	}
}

func (f *fakeRepository) Question() repositories.QuestionRepository { return f.questions }
func (f *fakeRepository) Category() repositories.CategoryRepository { return f.categories }
func (f *fakeRepository) Response() repositories.ResponseRepository { return f.responses }
func (f *fakeRepository) Document() repositories.DocumentRepository { return nil }
func (f *fakeRepository) Bulletin() repositories.BulletinRepository { return nil }
func (f *fakeRepository) User() repositories.UserRepository         { return f.users }

type fakeQuestionRepo struct {
	items   []*models.Question
	listErr error
}

func (f *fakeQuestionRepo) Create(_ context.Context, q *models.Question) error {
	f.items = append(f.items, q)
	return nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, id string) (*models.Question, error) {
	for _, q := range f.items {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) List(_ context.Context, _ repositories.QuestionFilters) ([]*models.Question, error) {
	return f.items, f.listErr
}

func (f *fakeQuestionRepo) GetBySubsection(_ context.Context, subsectionID string) ([]*models.Question, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.Question
	for _, q := range f.items {
		if q.SubsectionID == subsectionID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Update(_ context.Context, q *models.Question) error {
	for i, existing := range f.items {
		if existing.ID == q.ID {
			f.items[i] = q
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeQuestionRepo) Delete(_ context.Context, id string) error {
	for i, existing := range f.items {
		if existing.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeCategoryRepo struct {
	items   []*models.Category
	listErr error
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *models.Category) error {
	f.items = append(f.items, c)
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*models.Category, error) {
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*models.Category, error) {
	return f.items, f.listErr
}

func (f *fakeCategoryRepo) Update(_ context.Context, _ *models.Category) error { return nil }
func (f *fakeCategoryRepo) Delete(_ context.Context, _ string) error           { return nil }

type fakeResponseRepo struct {
	mu      sync.Mutex
	records []*models.ResponseRecord
}

func (f *fakeResponseRepo) Create(_ context.Context, r *models.ResponseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = uint(len(f.records) + 1)
	f.records = append(f.records, r)
	return nil
}

func (f *fakeResponseRepo) GetBySubsection(_ context.Context, subsectionID string) ([]*models.ResponseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ResponseRecord
	for _, r := range f.records {
		if r.SubsectionID == subsectionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) GetByUser(_ context.Context, userID string, _ repositories.ResponseFilters) ([]*models.ResponseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ResponseRecord
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResponseRepo) CountByUserAndSubsection(_ context.Context, userID, subsectionID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.records {
		if r.UserID == userID && r.SubsectionID == subsectionID {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

// ===== FAKE SUBMITTER =====

// fakeSubmitter records submissions in order, can fail at a given index, and
// can hold every delivery until a gate channel closes.
type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []*models.ResponseRecord
	failAt    int           // 1-based index of the call to fail; 0 disables
	gate      chan struct{} // when set, deliveries wait for the close
}

func (f *fakeSubmitter) SubmitResponse(_ context.Context, record *models.ResponseRecord) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAt > 0 && len(f.submitted)+1 == f.failAt {
		return errors.New("backend rejected response")
	}
	f.submitted = append(f.submitted, record)
	return nil
}

func (f *fakeSubmitter) records() []*models.ResponseRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.ResponseRecord, len(f.submitted))
	copy(out, f.submitted)
	return out
}

// ===== FIXTURES =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(duration, tick time.Duration) *config.Config {
	return &config.Config{
		SurveyDuration: duration,
		TimerTick:      tick,
	}
}

// twoCategoryCatalog builds categories c1 (q1, q2) and c2 (q3) plus a
// descriptive question in c2 for the subsection "ss-1".
func twoCategoryCatalog() ([]*models.Category, []*models.Question) {
	correctA := "option-a"
	correctB := "option-b"
	c1 := "cat-1"
	c2 := "cat-2"

	categories := []*models.Category{
		{ID: c1, Name: "Safety", Order: 1},
		{ID: c2, Name: "Policy", Order: 2},
	}
	questions := []*models.Question{
		{ID: "q1", Prompt: "First?", CorrectOption: &correctA, CategoryID: &c1, SubsectionID: "ss-1", Type: models.QuestionTypeStandard, Order: 1},
		{ID: "q2", Prompt: "Second?", CorrectOption: &correctB, CategoryID: &c1, SubsectionID: "ss-1", Type: models.QuestionTypeStandard, Order: 2},
		{ID: "q3", Prompt: "Third?", CorrectOption: &correctA, CategoryID: &c2, SubsectionID: "ss-1", Type: models.QuestionTypeOptional, Order: 1},
		{ID: "q4", Prompt: "Comments?", CategoryID: &c2, SubsectionID: "ss-1", Type: models.QuestionTypeDescriptive, Order: 2},
	}
	return categories, questions
}

type attemptFixture struct {
	service   AttemptService
	repo      *fakeRepository
	store     *cache.MemoryAttemptStore
	submitter *fakeSubmitter
	publisher *events.MockEventPublisher
}

func newAttemptFixture(cfg *config.Config) *attemptFixture {
	repo := newFakeRepository()
	categories, questions := twoCategoryCatalog()
	repo.categories.items = categories
	repo.questions.items = questions

	store := cache.NewMemoryAttemptStore()
	submitter := &fakeSubmitter{}
	publisher := events.NewMockEventPublisher(testLogger())

	service := NewAttemptService(repo, store, submitter, publisher, testLogger(), cfg)
	return &attemptFixture{
		service:   service,
		repo:      repo,
		store:     store,
		submitter: submitter,
		publisher: publisher,
	}
}

// bearerToken builds an HS256 token carrying the user id; only the payload is
// read during submission, the signature never is.
func bearerToken(userID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		panic(err)
	}
	return "Bearer " + signed
}
