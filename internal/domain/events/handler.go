package events

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/apierr"
	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// PetLookup evita el ciclo de imports events <-> pets.
type PetLookup interface {
	Exists(ctx context.Context, petID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, pets PetLookup, log logger.Logger) {
	r.Get("/pets/{petID}/events", listEventsHandler(svc, pets, log))
}

// eventResponse es una entrada del historial de actividad devuelta por la API.
type eventResponse struct {
	ID            string    `json:"id"`
	PetID         string    `json:"petId"`
	Type          EventType `json:"type"`
	OccurredAt    time.Time `json:"occurredAt"`
	Title         string    `json:"title"`
	Notes         string    `json:"notes,omitempty"`
	ApplicationID string    `json:"applicationId,omitempty"`
	ActorType     ActorType `json:"actorType"`
	ActorID       string    `json:"actorId,omitempty"`
}

// listEventsHandler godoc
// @Summary Historial de actividad de una mascota
// @Description Lista quién cambió qué sobre la mascota: altas, ediciones, overrides de estado, fotos y transiciones de solicitudes. Solo admin. Autenticación: `X-Debug-User-ID` + `X-Debug-Role` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param petID path string true "ID de la mascota"
// @Param limit query int false "Máximo de entradas a devolver (1-200). Por defecto 50"
// @Param types query string false "Lista CSV de tipos a incluir (ej: APPLICATION_APPROVED,PET_STATUS_CHANGED)"
// @Param from query string false "Fecha/hora mínima (RFC3339)"
// @Param to query string false "Fecha/hora máxima (RFC3339)"
// @Param q query string false "Texto de búsqueda libre en título/notas"
// @Success 200 {object} httpresp.Envelope{data=[]eventResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope "Parámetros de filtro inválidos"
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /pets/{petID}/events [get]
func listEventsHandler(svc *Service, pets PetLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, apierr.Unauthorized("Not authorized to access this route"))
			return
		}

		// Permisos primero, para no filtrar si la mascota existe.
		if !actor.Can(auth.ActionPetViewActivity) {
			httpresp.Error(w, log, ErrForbidden)
			return
		}

		petID := chi.URLParam(r, "petID")
		if err := pets.Exists(r.Context(), petID); err != nil {
			httpresp.Error(w, log, err)
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}

		items, err := svc.ListByPet(r.Context(), actor, petID, filter)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}

		out := make([]eventResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEventResponse(e))
		}
		httpresp.Success(w, http.StatusOK, "Activity retrieved successfully", out)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	filter := ListFilter{Limit: limit}

	// types=APPLICATION_APPROVED,PET_STATUS_CHANGED
	if v := strings.TrimSpace(r.URL.Query().Get("types")); v != "" {
		parts := strings.Split(v, ",")
		out := make([]EventType, 0, len(parts))
		for _, p := range parts {
			t := EventType(strings.TrimSpace(p))
			if t == "" {
				continue
			}
			out = append(out, t)
		}
		if len(out) > 0 {
			filter.Types = out
		}
	}

	// from/to RFC3339
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, apierr.BadRequest("from must be RFC3339")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ListFilter{}, apierr.BadRequest("to must be RFC3339")
		}
		filter.To = &t
	}

	if v := strings.TrimSpace(r.URL.Query().Get("q")); v != "" {
		filter.Query = v
	}

	return filter, nil
}

func toEventResponse(e PetEvent) eventResponse {
	return eventResponse{
		ID:            e.ID,
		PetID:         e.PetID,
		Type:          e.Type,
		OccurredAt:    e.OccurredAt,
		Title:         e.Title,
		Notes:         e.Notes,
		ApplicationID: e.ApplicationID,
		ActorType:     e.Actor.Type,
		ActorID:       e.Actor.ID,
	}
}
