// Package backendsim is an in-memory stand-in for the rental-object API,
// served over HTTP with gin or used in-process as a backend.Client.
package backendsim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mark3labs/rentalwizard/internal/backend"
	"github.com/mark3labs/rentalwizard/internal/rental"
)

// Repository stores rental objects in memory. It satisfies backend.Client.
type Repository struct {
	mu     sync.RWMutex
	byID   map[string]*rental.Object
	bySlug map[string]string
	now    func() time.Time
}

var _ backend.Client = (*Repository)(nil)

func NewRepository() *Repository {
	return &Repository{
		byID:   make(map[string]*rental.Object),
		bySlug: make(map[string]string),
		now:    time.Now,
	}
}

func (r *Repository) Get(_ context.Context, objectSlug string) (*rental.Object, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[objectSlug]
	if !ok {
		return nil, fmt.Errorf("slug %q: %w", objectSlug, backend.ErrNotFound)
	}
	return copyObject(r.byID[id]), nil
}

// List returns every object ordered by creation time.
func (r *Repository) List() []*rental.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*rental.Object, 0, len(r.byID))
	for _, obj := range r.byID {
		out = append(out, copyObject(obj))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *Repository) Create(_ context.Context, dto *rental.DTO) (*rental.Object, error) {
	if err := dto.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrInvalid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	obj := &rental.Object{
		Listing:   *dto.FormData(uuid.NewString(), r.uniqueSlug(dto.Name)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[obj.Listing.ID] = obj
	r.bySlug[obj.Listing.Slug] = obj.Listing.ID
	return copyObject(obj), nil
}

// Update replaces the listing of object id. The slug is stable and the
// category cannot change once the object is published.
func (r *Repository) Update(_ context.Context, id string, dto *rental.DTO) (*rental.Object, error) {
	if err := dto.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrInvalid, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("id %q: %w", id, backend.ErrNotFound)
	}
	if current.Listing.Status == rental.StatusPublished && dto.Category != current.Listing.Category {
		return nil, fmt.Errorf("category of published object %q cannot change: %w", id, backend.ErrConflict)
	}

	obj := &rental.Object{
		Listing:   *dto.FormData(id, current.Listing.Slug),
		CreatedAt: current.CreatedAt,
		UpdatedAt: r.now(),
	}
	r.byID[id] = obj
	return copyObject(obj), nil
}

// uniqueSlug derives a slug from name, suffixing -2, -3, ... on collision.
func (r *Repository) uniqueSlug(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "rental-object"
	}
	candidate := base
	for n := 2; ; n++ {
		if _, taken := r.bySlug[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func copyObject(obj *rental.Object) *rental.Object {
	out := *obj
	out.Listing = *obj.Listing.Clone()
	return &out
}
