package db

import (
	"context"
	"sort"
	"sync"

	"github.com/RachanaRJadav/arecanut-ai/internal/model"
	apperrors "github.com/RachanaRJadav/arecanut-ai/pkg/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-process Repository used in tests and when
// no MongoDB URI is configured (demo mode). It mirrors the mongo
// implementation's visible behavior, including newest-first ordering.
type MemoryRepository struct {
	mu      sync.RWMutex
	users   map[string]model.User
	batches map[primitive.ObjectID]model.Batch
	results []model.GradingResult
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:   make(map[string]model.User),
		batches: make(map[primitive.ObjectID]model.Batch),
	}
}

func (m *MemoryRepository) CreateUser(ctx context.Context, user *model.User) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Email]; exists {
		return primitive.NilObjectID, apperrors.ErrUserExists
	}

	u := *user
	u.ID = primitive.NewObjectID()
	m.users[u.Email] = u
	return u.ID, nil
}

func (m *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryRepository) InsertBatch(ctx context.Context, batch *model.Batch) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := *batch
	b.ID = primitive.NewObjectID()
	m.batches[b.ID] = b
	return b.ID, nil
}

func (m *MemoryRepository) CompleteBatch(ctx context.Context, id primitive.ObjectID, completion model.BatchCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.batches[id]
	if !ok {
		return apperrors.ErrBatchNotFound
	}

	completedAt := completion.CompletedAt
	b.Status = model.BatchStatusCompleted
	b.ProcessedImages = completion.ProcessedImages
	b.Results = completion.Results
	b.AverageQualityScore = completion.AverageQualityScore
	b.AveragePrice = completion.AveragePrice
	b.CompletedAt = &completedAt
	m.batches[id] = b
	return nil
}

func (m *MemoryRepository) FailBatch(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.batches[id]
	if !ok {
		return apperrors.ErrBatchNotFound
	}
	b.Status = model.BatchStatusFailed
	m.batches[id] = b
	return nil
}

func (m *MemoryRepository) InsertGradingResult(ctx context.Context, result *model.GradingResult) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := *result
	r.ID = primitive.NewObjectID()
	m.results = append(m.results, r)
	return r.ID, nil
}

func (m *MemoryRepository) ResultsByOwner(ctx context.Context, userID string) ([]model.GradingResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []model.GradingResult
	for _, r := range m.results {
		if r.UserID == userID {
			results = append(results, r)
		}
	}
	return results, nil
}

func (m *MemoryRepository) RecentResults(ctx context.Context, userID string, limit int64) ([]model.GradingResult, error) {
	results, _ := m.ResultsByOwner(ctx, userID)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if limit > 0 && int64(len(results)) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetBatch exposes stored batches for verification in tests.
func (m *MemoryRepository) GetBatch(id primitive.ObjectID) (model.Batch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.batches[id]
	return b, ok
}

// BatchCount reports how many batch records have been created.
func (m *MemoryRepository) BatchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches)
}

// Batches returns all stored batches.
func (m *MemoryRepository) Batches() []model.Batch {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	return out
}
