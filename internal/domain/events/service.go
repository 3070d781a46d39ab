package events

import (
	"context"
	"strings"
	"time"

	"pet-adoption/internal/platform/apierr"
	"pet-adoption/internal/ports/auth"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = apierr.BadRequest("invalid activity entry")
	ErrForbidden    = apierr.Forbidden("Not authorized to access this route")
)

// Recorder es lo que necesitan los otros módulos para dejar rastro.
type Recorder interface {
	Record(ctx context.Context, in RecordInput) error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RecordInput struct {
	PetID         string
	Type          EventType
	Title         string
	Notes         string
	ApplicationID string
	Actor         Actor
}

func (s *Service) Record(ctx context.Context, in RecordInput) error {
	if strings.TrimSpace(in.PetID) == "" || in.Type == "" {
		return ErrInvalidInput
	}
	if in.Actor.Type == "" {
		return ErrInvalidInput
	}

	e := PetEvent{
		ID:            uuid.NewString(),
		PetID:         strings.TrimSpace(in.PetID),
		Type:          in.Type,
		OccurredAt:    s.now(),
		Title:         strings.TrimSpace(in.Title),
		Notes:         strings.TrimSpace(in.Notes),
		ApplicationID: strings.TrimSpace(in.ApplicationID),
		Actor:         in.Actor,
	}
	return s.repo.Create(ctx, e)
}

// ListByPet es solo para quien puede auditar la actividad (admin).
func (s *Service) ListByPet(ctx context.Context, actor auth.Actor, petID string, filter ListFilter) ([]PetEvent, error) {
	if !actor.Can(auth.ActionPetViewActivity) {
		return nil, ErrForbidden
	}
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByPet(ctx, petID, filter)
}
