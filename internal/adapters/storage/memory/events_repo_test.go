package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pet-adoption/internal/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRepo_ListByPet(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepo()
	base := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	add := func(id, petID string, typ events.EventType, at time.Time, title string) {
		t.Helper()
		require.NoError(t, repo.Create(ctx, events.PetEvent{ID: id, PetID: petID, Type: typ, OccurredAt: at, Title: title}))
	}
	add("e1", "pet-1", events.EventTypePetCreated, base, "Pet listed")
	add("e2", "pet-1", events.EventTypeApplicationSubmitted, base.Add(time.Minute), "New application")
	add("e3", "pet-1", events.EventTypeApplicationApproved, base.Add(2*time.Minute), "Application approved")
	add("e4", "pet-1", events.EventTypeApplicationRejected, base.Add(2*time.Minute), "Application rejected")
	add("e5", "pet-2", events.EventTypePetCreated, base, "Other pet")

	all, err := repo.ListByPet(ctx, "pet-1", events.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e3", "e2", "e1"}, eventIDs(all))

	apps, err := repo.ListByPet(ctx, "pet-1", events.ListFilter{Query: "application", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"e4", "e3"}, eventIDs(apps))

	none, err := repo.ListByPet(ctx, "pet-9", events.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestEventRepo_CreateRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepo()

	assert.Error(t, repo.Create(ctx, events.PetEvent{PetID: "pet-1"}))
	require.NoError(t, repo.Create(ctx, events.PetEvent{ID: "e1", PetID: "pet-1"}))
	assert.Error(t, repo.Create(ctx, events.PetEvent{ID: "e1", PetID: "pet-2"}))
}

func TestEventRepo_ListByPetCapsLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepo()
	at := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < events.MaxListLimit+5; i++ {
		require.NoError(t, repo.Create(ctx, events.PetEvent{ID: fmt.Sprintf("e%d", i), PetID: "pet-1", OccurredAt: at}))
	}

	list, err := repo.ListByPet(ctx, "pet-1", events.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, events.DefaultListLimit)

	list, err = repo.ListByPet(ctx, "pet-1", events.ListFilter{Limit: 10000})
	require.NoError(t, err)
	assert.Len(t, list, events.MaxListLimit)
}

func eventIDs(list []events.PetEvent) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}
