// Package backend is the SDK the wizard uses to fetch, create and update
// rental objects.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/rentalwizard/internal/rental"
)

var (
	// ErrNotFound is returned when no object matches the slug or id.
	ErrNotFound = errors.New("rental object not found")
	// ErrConflict is returned when the change clashes with the stored object.
	ErrConflict = errors.New("rental object conflict")
	// ErrInvalid is returned when the backend rejects the payload.
	ErrInvalid = errors.New("invalid rental object")
)

// Client fetches and persists rental objects.
type Client interface {
	Get(ctx context.Context, slug string) (*rental.Object, error)
	Create(ctx context.Context, dto *rental.DTO) (*rental.Object, error)
	Update(ctx context.Context, id string, dto *rental.DTO) (*rental.Object, error)
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int               `json:"status"`
	Message string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// Is maps HTTP statuses onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrConflict:
		return e.Status == 409
	case ErrInvalid:
		return e.Status == 400 || e.Status == 422
	}
	return false
}
