package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption/internal/domain/applications"
)

type applicationRepo struct {
	mu   sync.RWMutex
	byID map[string]applications.Application
	// índice único (pet, applicant)
	byPair map[pairKey]string
}

type pairKey struct {
	petID       string
	applicantID string
}

func NewApplicationRepo() applications.Repository {
	return &applicationRepo{
		byID:   make(map[string]applications.Application),
		byPair: make(map[pairKey]string),
	}
}

func (r *applicationRepo) Create(ctx context.Context, a applications.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("application id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("application already exists")
	}
	key := pairKey{petID: a.PetID, applicantID: a.ApplicantID}
	if _, taken := r.byPair[key]; taken {
		return applications.ErrDuplicateApplication
	}

	r.byID[a.ID] = a
	r.byPair[key] = a.ID
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.Application{}, applications.ErrNotFound
	}
	return a, nil
}

func (r *applicationRepo) ExistsForPair(ctx context.Context, petID, applicantID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byPair[pairKey{petID: petID, applicantID: applicantID}]
	return ok, nil
}

func (r *applicationRepo) TransitionStatus(ctx context.Context, id string, from applications.Status, rv applications.Review) (applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.Application{}, applications.ErrNotFound
	}
	if a.Status != from {
		return applications.Application{}, applications.ErrAlreadyReviewed
	}

	at := rv.ReviewedAt
	a.Status = rv.Status
	a.ReviewedBy = rv.ReviewedBy
	a.ReviewedAt = &at
	a.ReviewNotes = rv.Notes
	a.UpdatedAt = at
	r.byID[id] = a
	return a, nil
}

func (r *applicationRepo) RejectPending(ctx context.Context, petID, exceptID, notes string, at time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0)
	for id, a := range r.byID {
		if a.PetID != petID || id == exceptID || a.Status != applications.StatusPending {
			continue
		}
		stamp := at
		a.Status = applications.StatusRejected
		a.ReviewedBy = ""
		a.ReviewedAt = &stamp
		a.ReviewNotes = notes
		a.UpdatedAt = at
		r.byID[id] = a
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *applicationRepo) Delete(ctx context.Context, id string, from applications.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.ErrNotFound
	}
	if a.Status != from {
		return applications.ErrOnlyPendingDeletable
	}
	delete(r.byID, id)
	delete(r.byPair, pairKey{petID: a.PetID, applicantID: a.ApplicantID})
	return nil
}

func (r *applicationRepo) List(ctx context.Context, f applications.ListFilter) ([]applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if f.Matches(a) {
			out = append(out, a)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})

	return paginate(out, f.Skip, f.Limit), nil
}

func (r *applicationRepo) Count(ctx context.Context, f applications.ListFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if f.Matches(a) {
			n++
		}
	}
	return n, nil
}

func (r *applicationRepo) StatusCounts(ctx context.Context) (map[applications.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := map[applications.Status]int{}
	for _, a := range r.byID {
		out[a.Status]++
	}
	return out, nil
}
