package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

const eventColumns = `
	id, pet_id, type, occurred_at,
	title, notes, application_id,
	actor_type, actor_id`

func (r *EventsRepo) Create(ctx context.Context, e events.PetEvent) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO pet_events (`+eventColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		e.ID,
		e.PetID,
		string(e.Type),
		e.OccurredAt,
		e.Title,
		e.Notes,
		e.ApplicationID,
		string(e.Actor.Type),
		e.Actor.ID,
	)
	return err
}

// ListByPet devuelve lo más reciente primero; el límite se acota a events.MaxListLimit.
func (r *EventsRepo) ListByPet(ctx context.Context, petID string, filter events.ListFilter) ([]events.PetEvent, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return []events.PetEvent{}, nil
	}

	where, args := eventWhere(petID, filter)
	args = append(args, filter.EffectiveLimit())
	q := `SELECT ` + eventColumns + ` FROM pet_events` + where +
		fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d", len(args))

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]events.PetEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func eventWhere(petID string, f events.ListFilter) (string, []any) {
	args := []any{petID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds := []string{"pet_id = $1"}
	if len(f.Types) > 0 {
		ph := make([]string, 0, len(f.Types))
		for _, t := range f.Types {
			ph = append(ph, arg(string(t)))
		}
		conds = append(conds, "type IN ("+strings.Join(ph, ",")+")")
	}
	if f.From != nil {
		conds = append(conds, "occurred_at >= "+arg(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "occurred_at <= "+arg(*f.To))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg(likePattern(q))
		conds = append(conds, "(title ILIKE "+p+" OR notes ILIKE "+p+")")
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEvent(row rowScanner) (events.PetEvent, error) {
	var (
		e              events.PetEvent
		typ, actorType string
	)
	if err := row.Scan(
		&e.ID,
		&e.PetID,
		&typ,
		&e.OccurredAt,
		&e.Title,
		&e.Notes,
		&e.ApplicationID,
		&actorType,
		&e.Actor.ID,
	); err != nil {
		return events.PetEvent{}, err
	}
	e.Type = events.EventType(typ)
	e.Actor.Type = events.ActorType(actorType)
	return e, nil
}
