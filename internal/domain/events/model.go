package events

import "time"

type Actor struct {
	Type ActorType
	ID   string
}

// PetEvent es una entrada del historial de actividad de una mascota.
type PetEvent struct {
	ID    string
	PetID string

	Type EventType

	OccurredAt time.Time

	Title string
	Notes string

	// ApplicationID es opcional; vincula la entrada a una solicitud.
	ApplicationID string

	Actor Actor
}
