package auth

import "strings"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole acepta solo roles conocidos (case-insensitive).
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Action identifica una operación protegida.
type Action string

const (
	ActionPetCreate          Action = "pet:create"
	ActionPetUpdate          Action = "pet:update"
	ActionPetDelete          Action = "pet:delete"
	ActionPetSetStatus       Action = "pet:set_status"
	ActionPetUploadPhotos    Action = "pet:upload_photos"
	ActionPetListAllStatuses Action = "pet:list_all_statuses"
	ActionPetViewActivity    Action = "pet:view_activity"
	ActionStatsView          Action = "stats:view"

	ActionApplicationSubmit    Action = "application:submit"
	ActionApplicationReview    Action = "application:review"
	ActionApplicationViewAny   Action = "application:view_any"
	ActionApplicationDeleteAny Action = "application:delete_any"
	ActionApplicationFilterAny Action = "application:filter_any"
)

// permissions es la única tabla de permisos del servicio.
// Las acciones "*_any" cubren recursos ajenos; sobre recursos propios decide CanOnOwned.
var permissions = map[Role]map[Action]bool{
	RoleUser: {
		ActionApplicationSubmit: true,
	},
	RoleAdmin: {
		ActionPetCreate:            true,
		ActionPetUpdate:            true,
		ActionPetDelete:            true,
		ActionPetSetStatus:         true,
		ActionPetUploadPhotos:      true,
		ActionPetListAllStatuses:   true,
		ActionPetViewActivity:      true,
		ActionStatsView:            true,
		ActionApplicationSubmit:    true,
		ActionApplicationReview:    true,
		ActionApplicationViewAny:   true,
		ActionApplicationDeleteAny: true,
		ActionApplicationFilterAny: true,
	},
}

func (r Role) Can(a Action) bool {
	return permissions[r][a]
}

func (a Actor) Authenticated() bool {
	return strings.TrimSpace(a.ID) != ""
}

func (a Actor) Can(action Action) bool {
	return a.Authenticated() && a.Role.Can(action)
}

// CanOnOwned: el dueño del recurso siempre puede; si no, hace falta anyAction.
func (a Actor) CanOnOwned(anyAction Action, ownerID string) bool {
	if !a.Authenticated() {
		return false
	}
	if ownerID != "" && a.ID == ownerID {
		return true
	}
	return a.Role.Can(anyAction)
}
