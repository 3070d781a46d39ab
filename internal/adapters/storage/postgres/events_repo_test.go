package postgres

import (
	"context"
	"testing"
	"time"

	"pet-adoption/internal/domain/events"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventWhere(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args := eventWhere("pet-1", events.ListFilter{
		Types: []events.EventType{events.EventTypeApplicationRejected, events.EventTypeApplicationApproved},
		From:  &from,
		Query: " 50% ",
	})

	assert.Equal(t, " WHERE pet_id = $1 AND type IN ($2,$3) AND occurred_at >= $4 AND (title ILIKE $5 OR notes ILIKE $5)", where)
	assert.Equal(t, []any{"pet-1", "APPLICATION_REJECTED", "APPLICATION_APPROVED", from, `%50\%%`}, args)
}

func TestEventsRepo_ListByPetCapsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM pet_events WHERE pet_id = \\$1 ORDER BY occurred_at DESC LIMIT \\$2").
		WithArgs("pet-1", events.MaxListLimit).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "pet_id", "type", "occurred_at", "title", "notes", "application_id", "actor_type", "actor_id",
		}))

	list, err := NewEventsRepo(db).ListByPet(context.Background(), "pet-1", events.ListFilter{Limit: 1000})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventsRepo_ListByPet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM pet_events WHERE pet_id = \\$1 ORDER BY occurred_at DESC LIMIT \\$2").
		WithArgs("pet-1", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "pet_id", "type", "occurred_at", "title", "notes", "application_id", "actor_type", "actor_id",
		}).AddRow("e1", "pet-1", "APPLICATION_REJECTED", at, "Application rejected", "Pet adopted by another applicant", "app-2", "SYSTEM", ""))

	list, err := NewEventsRepo(db).ListByPet(context.Background(), "pet-1", events.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, events.EventTypeApplicationRejected, list[0].Type)
	assert.Equal(t, events.ActorTypeSystem, list[0].Actor.Type)
	assert.Equal(t, "app-2", list[0].ApplicationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
