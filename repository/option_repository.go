package repository

import (
	"context"
	"errors"

	"loan-workout/domain"
)

var ErrNotFound = errors.New("not found")

// OptionRepository persists the saved options of a resolution and the
// loan-level figures stored next to them. List returns options ordered by id.
type OptionRepository interface {
	List(ctx context.Context, resolutionID string) ([]domain.Option, error)
	// Save inserts the option or replaces the entry with the same id.
	Save(ctx context.Context, resolutionID string, option domain.Option) error
	// Replace swaps the whole option list, used after a removal renumbers ids.
	Replace(ctx context.Context, resolutionID string, options []domain.Option) error
	SavePersistingData(ctx context.Context, resolutionID string, data domain.PersistingData) error
	// PersistingData returns ErrNotFound when nothing was stored yet.
	PersistingData(ctx context.Context, resolutionID string) (domain.PersistingData, error)
}
