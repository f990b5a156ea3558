// Package skills provides the interface for skill catalog persistence
package skills

//go:generate mockgen -destination=mock/mock_repository.go -package=skillsmock github.com/scrimmagebot/scrimmage/internal/repositories/skills Repository

import (
	"context"

	"github.com/scrimmagebot/scrimmage/internal/entities"
)

// Repository defines the interface for skill record persistence.
// Records are stored in their wire form; decoding into typed skill
// definitions is the catalog's job.
type Repository interface {
	// List retrieves every skill record in the collection
	// Returns errors.Internal for storage failures
	List(ctx context.Context, input ListInput) (*ListOutput, error)

	// Get retrieves a skill record by exact name (case-sensitive)
	// Returns errors.NotFound if no record has that name
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Insert stores a new skill record
	// Returns errors.AlreadyExists if a record with the same name exists
	Insert(ctx context.Context, input InsertInput) (*InsertOutput, error)

	// Delete removes a skill record by name; deleting an absent record
	// is not an error
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// ListInput defines the input for listing skill records
type ListInput struct{}

// ListOutput defines the output for listing skill records
type ListOutput struct {
	Records []*entities.SkillRecord
}

// GetInput defines the input for getting a skill record
type GetInput struct {
	Name string
}

// GetOutput defines the output for getting a skill record
type GetOutput struct {
	Record *entities.SkillRecord
}

// InsertInput defines the input for inserting a skill record
type InsertInput struct {
	Record *entities.SkillRecord
}

// InsertOutput defines the output for inserting a skill record
type InsertOutput struct {
	Record *entities.SkillRecord
}

// DeleteInput defines the input for deleting a skill record
type DeleteInput struct {
	Name string
}

// DeleteOutput defines the output for deleting a skill record
type DeleteOutput struct {
	// Deleted reports whether a record was actually removed
	Deleted bool
}
