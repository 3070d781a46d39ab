package events

type EventType string

const (
	EventTypePetCreated           EventType = "PET_CREATED"
	EventTypePetUpdated           EventType = "PET_UPDATED"
	EventTypePetStatusOverridden  EventType = "PET_STATUS_OVERRIDDEN"
	EventTypePetStatusChanged     EventType = "PET_STATUS_CHANGED"
	EventTypePhotosAdded          EventType = "PHOTOS_ADDED"
	EventTypeApplicationSubmitted EventType = "APPLICATION_SUBMITTED"
	EventTypeApplicationApproved  EventType = "APPLICATION_APPROVED"
	EventTypeApplicationRejected  EventType = "APPLICATION_REJECTED"
	EventTypeApplicationWithdrawn EventType = "APPLICATION_WITHDRAWN"
)

type ActorType string

const (
	ActorTypeAdminUser     ActorType = "ADMIN_USER"
	ActorTypeApplicantUser ActorType = "APPLICANT_USER"
	// ActorTypeSystem se usa para efectos en cascada (p.ej. rechazo automático).
	ActorTypeSystem ActorType = "SYSTEM"
)
