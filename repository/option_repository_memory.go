package repository

import (
	"context"
	"sort"
	"sync"

	"loan-workout/domain"
)

// OptionRepositoryMemory is an in-memory implementation of OptionRepository.
type OptionRepositoryMemory struct {
	mu         sync.RWMutex
	options    map[string][]domain.Option
	persisting map[string]domain.PersistingData
}

// NewOptionRepositoryMemory creates a new in-memory option repository.
func NewOptionRepositoryMemory() *OptionRepositoryMemory {
	return &OptionRepositoryMemory{
		options:    make(map[string][]domain.Option),
		persisting: make(map[string]domain.PersistingData),
	}
}

func (r *OptionRepositoryMemory) List(_ context.Context, resolutionID string) ([]domain.Option, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.options[resolutionID]
	out := make([]domain.Option, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *OptionRepositoryMemory) Save(_ context.Context, resolutionID string, option domain.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.options[resolutionID]
	for i := range stored {
		if stored[i].ID == option.ID {
			stored[i] = option
			return nil
		}
	}
	stored = append(stored, option)
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })
	r.options[resolutionID] = stored
	return nil
}

func (r *OptionRepositoryMemory) Replace(_ context.Context, resolutionID string, options []domain.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]domain.Option, len(options))
	copy(stored, options)
	sort.Slice(stored, func(i, j int) bool { return stored[i].ID < stored[j].ID })
	r.options[resolutionID] = stored
	return nil
}

func (r *OptionRepositoryMemory) SavePersistingData(_ context.Context, resolutionID string, data domain.PersistingData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persisting[resolutionID] = data
	return nil
}

func (r *OptionRepositoryMemory) PersistingData(_ context.Context, resolutionID string) (domain.PersistingData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.persisting[resolutionID]
	if !ok {
		return domain.PersistingData{}, ErrNotFound
	}
	return data, nil
}
