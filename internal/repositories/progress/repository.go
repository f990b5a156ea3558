// Package progress provides the interface for player progression persistence
package progress

//go:generate mockgen -destination=mock/mock_repository.go -package=progressmock github.com/scrimmagebot/scrimmage/internal/repositories/progress Repository

import (
	"context"

	"github.com/scrimmagebot/scrimmage/internal/entities"
)

// Repository defines the interface for player progression persistence
type Repository interface {
	// Get retrieves a progression record by user ID
	// Returns errors.NotFound if the user has no record yet
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Create stores a freshly seeded progression record
	// Returns errors.AlreadyExists if the user already has one
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Update replaces an existing progression record. Writes are whole
	// documents, last writer wins.
	// Returns errors.NotFound if the record doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a progression record by user ID
	// Returns errors.NotFound if the record doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// GetInput defines the input for getting a progression record
type GetInput struct {
	UserID string
}

// GetOutput defines the output for getting a progression record
type GetOutput struct {
	Progress *entities.PlayerProgress
}

// CreateInput defines the input for creating a progression record
type CreateInput struct {
	Progress *entities.PlayerProgress
}

// CreateOutput defines the output for creating a progression record
type CreateOutput struct {
	Progress *entities.PlayerProgress
}

// UpdateInput defines the input for updating a progression record
type UpdateInput struct {
	Progress *entities.PlayerProgress
}

// UpdateOutput defines the output for updating a progression record
type UpdateOutput struct {
	Progress *entities.PlayerProgress
}

// DeleteInput defines the input for deleting a progression record
type DeleteInput struct {
	UserID string
}

// DeleteOutput defines the output for deleting a progression record
type DeleteOutput struct{}
