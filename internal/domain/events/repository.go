package events

import (
	"context"
	"slices"
	"strings"
	"time"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type Repository interface {
	Create(ctx context.Context, e PetEvent) error
	ListByPet(ctx context.Context, petID string, filter ListFilter) ([]PetEvent, error)
}

type ListFilter struct {
	Types []EventType
	From  *time.Time
	To    *time.Time
	Query string
	Limit int
}

// Matches aplica tipos, rango [From, To] y texto libre (título o notas, sin
// distinguir mayúsculas). No mira la mascota ni el límite.
func (f ListFilter) Matches(e PetEvent) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, e.Type) {
		return false
	}
	if f.From != nil && e.OccurredAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.OccurredAt.After(*f.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Notes), q)
	}
	return true
}

// EffectiveLimit normaliza Limit: <= 0 usa el default y nunca pasa de MaxListLimit.
func (f ListFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}
