package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"pet-adoption/internal/domain/events"
)

// eventRepo guarda el historial agrupado por mascota, en orden de inserción.
type eventRepo struct {
	mu    sync.RWMutex
	ids   map[string]struct{}
	byPet map[string][]events.PetEvent
}

func NewEventRepo() events.Repository {
	return &eventRepo{
		ids:   make(map[string]struct{}),
		byPet: make(map[string][]events.PetEvent),
	}
}

func (r *eventRepo) Create(_ context.Context, e events.PetEvent) error {
	if e.ID == "" {
		return errors.New("event id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.ids[e.ID]; dup {
		return errors.New("event already exists")
	}
	r.ids[e.ID] = struct{}{}
	r.byPet[e.PetID] = append(r.byPet[e.PetID], e)
	return nil
}

func (r *eventRepo) ListByPet(_ context.Context, petID string, filter events.ListFilter) ([]events.PetEvent, error) {
	r.mu.RLock()
	var out []events.PetEvent
	list := r.byPet[petID]
	for i := len(list) - 1; i >= 0; i-- {
		if filter.Matches(list[i]) {
			out = append(out, list[i])
		}
	}
	r.mu.RUnlock()

	// Más reciente primero; a igual fecha, el último registrado primero.
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })

	if limit := filter.EffectiveLimit(); len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []events.PetEvent{}
	}
	return out, nil
}
