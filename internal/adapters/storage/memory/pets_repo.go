package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption/internal/domain/pets"
)

type petRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() pets.Repository {
	return &petRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *petRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; !exists {
		return pets.ErrNotFound
	}
	r.byID[p.ID] = clonePet(p)
	return nil
}

func (r *petRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return clonePet(p), nil
}

// GetByIDForUpdate no necesita lock propio: el Transactor en memoria ya
// serializa el workflow.
func (r *petRepo) GetByIDForUpdate(ctx context.Context, id string) (pets.Pet, error) {
	return r.GetByID(ctx, id)
}

func (r *petRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return pets.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *petRepo) UpdateStatus(ctx context.Context, id string, status pets.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = at
	r.byID[id] = p
	return nil
}

func (r *petRepo) AppendPhotos(ctx context.Context, id string, urls []string, at time.Time) (pets.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	p.Photos = append(append([]string{}, p.Photos...), urls...)
	p.UpdatedAt = at
	r.byID[id] = p
	return clonePet(p), nil
}

func (r *petRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if f.Matches(p) {
			out = append(out, clonePet(p))
		}
	}

	// Más nuevas primero; a igual fecha, por id para que la paginación sea estable.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return paginate(out, f.Skip, f.Limit), nil
}

func (r *petRepo) Count(ctx context.Context, f pets.ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, p := range r.byID {
		if f.Matches(p) {
			n++
		}
	}
	return n, nil
}

func (r *petRepo) Distinct(ctx context.Context, field pets.Field) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, p := range r.byID {
		v, err := petField(p, field)
		if err != nil {
			return nil, err
		}
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (r *petRepo) CountBy(ctx context.Context, field pets.Field) (map[string]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[string]int{}
	for _, p := range r.byID {
		v, err := petField(p, field)
		if err != nil {
			return nil, err
		}
		out[v]++
	}
	return out, nil
}

func petField(p pets.Pet, field pets.Field) (string, error) {
	switch field {
	case pets.FieldSpecies:
		return string(p.Species), nil
	case pets.FieldBreed:
		return p.Breed, nil
	case pets.FieldLocation:
		return p.Location, nil
	case pets.FieldStatus:
		return string(p.Status), nil
	default:
		return "", errors.New("unsupported field: " + string(field))
	}
}

func clonePet(p pets.Pet) pets.Pet {
	if p.Photos != nil {
		p.Photos = append([]string{}, p.Photos...)
	}
	return p
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip > 0 {
		if skip >= len(items) {
			return items[:0]
		}
		items = items[skip:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
