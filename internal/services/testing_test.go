package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/models"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
)

// fakeStore is the shared in-memory state behind the fake repositories.
type fakeStore struct {
	mu sync.Mutex

	users      map[string]*models.User
	classes    map[uint]*models.Class
	categories map[uint]*models.Category
	items      map[string]*models.Item

	assessments map[uint]*models.Assessment
	sessions    map[string]*models.AttemptSession
	results     map[string]*models.AttemptResult
	resultOrder []string
	estimates   map[string]*models.ProficiencyEstimate

	nextID uint
}

// fakeRepo is an in-memory repositories.Repository used by the service tests.
type fakeRepo struct {
	store *fakeStore
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{store: &fakeStore{
		users:       make(map[string]*models.User),
		classes:     make(map[uint]*models.Class),
		categories:  make(map[uint]*models.Category),
		items:       make(map[string]*models.Item),
		assessments: make(map[uint]*models.Assessment),
		sessions:    make(map[string]*models.AttemptSession),
		results:     make(map[string]*models.AttemptResult),
		estimates:   make(map[string]*models.ProficiencyEstimate),
	}}
}

func pairKey(assessmentID uint, userID string) string {
	return fmt.Sprintf("%d/%s", assessmentID, userID)
}

func estimateKey(userID string, categoryID uint) string {
	return fmt.Sprintf("%s/%d", userID, categoryID)
}

func (f *fakeRepo) Items() repositories.ItemRepository             { return fakeItemRepo{f.store} }
func (f *fakeRepo) Assessments() repositories.AssessmentRepository { return fakeAssessmentRepo{f.store} }
func (f *fakeRepo) Attempts() repositories.AttemptRepository       { return fakeAttemptRepo{f.store} }
func (f *fakeRepo) Abilities() repositories.AbilityRepository      { return fakeAbilityRepo{f.store} }
func (f *fakeRepo) Users() repositories.UserRepository             { return fakeUserRepo{f.store} }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}

// ----- items -----

type fakeItemRepo struct{ s *fakeStore }

func (f fakeItemRepo) GetByID(ctx context.Context, id string) (*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	item, ok := f.s.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return item, nil
}

func (f fakeItemRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	items := make([]*models.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := f.s.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f fakeItemRepo) GetRandomByCategories(ctx context.Context, categoryIDs []uint, count int) ([]*models.Item, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	pool := f.s.poolLocked(categoryIDs)
	if count < len(pool) {
		pool = pool[:count]
	}
	return pool, nil
}

func (f fakeItemRepo) CountByCategories(ctx context.Context, categoryIDs []uint) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.poolLocked(categoryIDs))), nil
}

// poolLocked returns the matching items in stable ID order so tests are
// deterministic.
func (s *fakeStore) poolLocked(categoryIDs []uint) []*models.Item {
	wanted := make(map[uint]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	pool := make([]*models.Item, 0)
	for _, item := range s.items {
		if wanted[item.CategoryID] {
			pool = append(pool, item)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool
}

func (f fakeItemRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	category, ok := f.s.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return category, nil
}

func (f fakeItemRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	categories := make([]*models.Category, 0, len(f.s.categories))
	for _, category := range f.s.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

// ----- assessments -----

type fakeAssessmentRepo struct{ s *fakeStore }

func (f fakeAssessmentRepo) Create(ctx context.Context, assessment *models.Assessment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.nextID++
	assessment.ID = f.s.nextID
	assessment.CreatedAt = time.Now().UTC()
	f.s.assessments[assessment.ID] = assessment
	return nil
}

func (f fakeAssessmentRepo) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	assessment, ok := f.s.assessments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return assessment, nil
}

func (f fakeAssessmentRepo) GetByIDWithItems(ctx context.Context, id uint) (*models.Assessment, error) {
	return f.GetByID(ctx, id)
}

func (f fakeAssessmentRepo) Update(ctx context.Context, assessment *models.Assessment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.assessments[assessment.ID] = assessment
	return nil
}

func (f fakeAssessmentRepo) ListForClass(ctx context.Context, classID uint) ([]*models.Assessment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	assessments := make([]*models.Assessment, 0)
	for _, assessment := range f.s.assessments {
		if assessment.ClassID != nil && *assessment.ClassID == classID {
			assessments = append(assessments, assessment)
		}
	}
	sort.Slice(assessments, func(i, j int) bool { return assessments[i].ID < assessments[j].ID })
	return assessments, nil
}

func (f fakeAssessmentRepo) GetInitialExam(ctx context.Context) (*models.Assessment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, assessment := range f.s.assessments {
		if assessment.IsInitial {
			return assessment, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f fakeAssessmentRepo) ReplaceItems(ctx context.Context, assessment *models.Assessment, items []*models.Item) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	assessment.Items = make([]models.Item, 0, len(items))
	for _, item := range items {
		assessment.Items = append(assessment.Items, *item)
	}
	return nil
}

// ----- attempts -----

type fakeAttemptRepo struct{ s *fakeStore }

func (f fakeAttemptRepo) GetOrCreateSession(ctx context.Context, assessmentID uint, userID string) (*models.AttemptSession, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	key := pairKey(assessmentID, userID)
	if session, ok := f.s.sessions[key]; ok {
		return session, nil
	}
	f.s.nextID++
	session := &models.AttemptSession{
		ID:           f.s.nextID,
		AssessmentID: assessmentID,
		UserID:       userID,
		StartedAt:    time.Now().UTC(),
	}
	f.s.sessions[key] = session
	return session, nil
}

func (f fakeAttemptRepo) GetSession(ctx context.Context, assessmentID uint, userID string) (*models.AttemptSession, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	session, ok := f.s.sessions[pairKey(assessmentID, userID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return session, nil
}

func (f fakeAttemptRepo) CreateResult(ctx context.Context, result *models.AttemptResult) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	key := pairKey(result.AssessmentID, result.UserID)
	if _, ok := f.s.results[key]; ok {
		return repositories.ErrDuplicate
	}
	f.s.nextID++
	result.ID = f.s.nextID
	result.CreatedAt = time.Now().UTC()
	for i := range result.Responses {
		result.Responses[i].ResultID = result.ID
		if item, ok := f.s.items[result.Responses[i].ItemID]; ok {
			result.Responses[i].Item = *item
		}
	}
	f.s.results[key] = result
	f.s.resultOrder = append(f.s.resultOrder, key)
	return nil
}

func (f fakeAttemptRepo) GetResult(ctx context.Context, assessmentID uint, userID string) (*models.AttemptResult, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	result, ok := f.s.results[pairKey(assessmentID, userID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return result, nil
}

func (f fakeAttemptRepo) HasResult(ctx context.Context, assessmentID uint, userID string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	_, ok := f.s.results[pairKey(assessmentID, userID)]
	return ok, nil
}

func (f fakeAttemptRepo) ListResultsByUser(ctx context.Context, userID string, filters repositories.HistoryFilters) ([]*models.AttemptResult, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	results := make([]*models.AttemptResult, 0)
	for _, key := range f.s.resultOrder {
		result := f.s.results[key]
		if result.UserID != userID {
			continue
		}
		if assessment, ok := f.s.assessments[result.AssessmentID]; ok {
			result.Assessment = *assessment
		}
		results = append(results, result)
	}
	return results, int64(len(results)), nil
}

func (f fakeAttemptRepo) ListResultsByAssessment(ctx context.Context, assessmentID uint) ([]*models.AttemptResult, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	results := make([]*models.AttemptResult, 0)
	for _, key := range f.s.resultOrder {
		result := f.s.results[key]
		if result.AssessmentID == assessmentID {
			results = append(results, result)
		}
	}
	return results, nil
}

func (f fakeAttemptRepo) GetCategoryResponses(ctx context.Context, userID string, categoryID uint) ([]repositories.CategoryResponse, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rows := make([]repositories.CategoryResponse, 0)
	for _, key := range f.s.resultOrder {
		result := f.s.results[key]
		if result.UserID != userID {
			continue
		}
		for _, response := range result.Responses {
			item, ok := f.s.items[response.ItemID]
			if !ok || item.CategoryID != categoryID {
				continue
			}
			rows = append(rows, repositories.CategoryResponse{
				ItemID:         item.ID,
				Discrimination: item.Discrimination,
				Difficulty:     item.Difficulty,
				Guessing:       item.Guessing,
				IsCorrect:      response.IsCorrect,
			})
		}
	}
	return rows, nil
}

// ----- abilities -----

type fakeAbilityRepo struct{ s *fakeStore }

func (f fakeAbilityRepo) Upsert(ctx context.Context, estimate *models.ProficiencyEstimate) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	estimate.UpdatedAt = time.Now().UTC()
	f.s.estimates[estimateKey(estimate.UserID, estimate.CategoryID)] = estimate
	return nil
}

func (f fakeAbilityRepo) Get(ctx context.Context, userID string, categoryID uint) (*models.ProficiencyEstimate, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	estimate, ok := f.s.estimates[estimateKey(userID, categoryID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return estimate, nil
}

func (f fakeAbilityRepo) ListByUser(ctx context.Context, userID string) ([]*models.ProficiencyEstimate, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	estimates := make([]*models.ProficiencyEstimate, 0)
	for _, estimate := range f.s.estimates {
		if estimate.UserID == userID {
			estimates = append(estimates, estimate)
		}
	}
	sort.Slice(estimates, func(i, j int) bool { return estimates[i].CategoryID < estimates[j].CategoryID })
	return estimates, nil
}

// ----- users -----

type fakeUserRepo struct{ s *fakeStore }

func (f fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	user, ok := f.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f fakeUserRepo) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	class, ok := f.s.classes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return class, nil
}

// ----- cache -----

// fakeCache is an in-memory cache.CacheService.
type fakeCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string][]byte)}
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = data
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.values, key)
		f.deletes = append(f.deletes, key)
	}
	return nil
}

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
