// Package templates stores the encounter variants a dragon can spawn as
package templates

import (
	"context"

	"github.com/KirkDiggler/endguard/internal/entities"
)

// Repository defines the storage interface for templates
type Repository interface {
	// Get retrieves a template by ID
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// List returns every template sorted by ID
	List(ctx context.Context, input *ListInput) (*ListOutput, error)

	// Choose draws a template weighted by its spawn weight
	Choose(ctx context.Context, input *ChooseInput) (*ChooseOutput, error)

	// Replace swaps the whole set, as done on definition reload
	Replace(ctx context.Context, input *ReplaceInput) (*ReplaceOutput, error)
}

// GetInput defines the request for retrieving a template
type GetInput struct {
	ID string
}

// GetOutput defines the response for retrieving a template
type GetOutput struct {
	Template *entities.Template
}

// ListInput defines the request for listing templates
type ListInput struct{}

// ListOutput defines the response for listing templates
type ListOutput struct {
	Templates []*entities.Template
}

// ChooseInput defines the request for drawing a template
type ChooseInput struct{}

// ChooseOutput defines the response for drawing a template
type ChooseOutput struct {
	Template *entities.Template
}

// ReplaceInput defines the request for replacing all templates
type ReplaceInput struct {
	Templates []*entities.Template
}

// ReplaceOutput defines the response for replacing all templates
type ReplaceOutput struct {
	Count   int
	Skipped []string
}
