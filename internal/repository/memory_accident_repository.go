package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/stwalsh4118/hunt/internal/models"
)

// MemoryAccidentRepository holds accidents in memory. Suitable for dev/testing.
// IDs keep increasing across deletes, like an autoincrement column.
type MemoryAccidentRepository struct {
	mu        sync.RWMutex
	accidents []models.Accident
	lastID    int64
}

// NewMemoryAccidentRepository initializes an empty in-memory store.
func NewMemoryAccidentRepository() *MemoryAccidentRepository {
	return &MemoryAccidentRepository{}
}

// DeleteAll removes every accident.
func (r *MemoryAccidentRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accidents = nil
	return nil
}

// CreateMany stores copies of accidents with fresh IDs.
func (r *MemoryAccidentRepository) CreateMany(_ context.Context, accidents []models.Accident) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accidents = append(r.accidents, r.assignIDs(accidents)...)
	return len(accidents), nil
}

// ReplaceAll swaps the whole contents under one lock.
func (r *MemoryAccidentRepository) ReplaceAll(_ context.Context, accidents []models.Accident) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accidents = r.assignIDs(accidents)
	return len(accidents), nil
}

// assignIDs must be called with mu held.
func (r *MemoryAccidentRepository) assignIDs(accidents []models.Accident) []models.Accident {
	out := slices.Clone(accidents)
	for i := range out {
		r.lastID++
		out[i].ID = r.lastID
	}
	return out
}

// FindAll returns copies of the accidents selected by q.
func (r *MemoryAccidentRepository) FindAll(_ context.Context, q models.Query) ([]models.Accident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return q.Apply(r.accidents), nil
}

// FindByID returns a copy of the accident, or nil, nil when absent.
func (r *MemoryAccidentRepository) FindByID(_ context.Context, id int64) (*models.Accident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accidents {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

// Ping always succeeds.
func (r *MemoryAccidentRepository) Ping(_ context.Context) error {
	return nil
}
