package applications

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const defaultPageLimit = 10

// PetLookup y ApplicantLookup arman los resúmenes embebidos en la respuesta.
type PetLookup interface {
	Get(ctx context.Context, id string) (pets.Pet, error)
}

// ApplicantLookup evita importar users desde acá.
type ApplicantLookup interface {
	Contact(ctx context.Context, userID string) (name, email string, err error)
}

type handlerDeps struct {
	wf         *Workflow
	pets       PetLookup
	applicants ApplicantLookup
	log        logger.Logger
}

func RegisterRoutes(r chi.Router, wf *Workflow, petLookup PetLookup, applicants ApplicantLookup, log logger.Logger) {
	h := handlerDeps{wf: wf, pets: petLookup, applicants: applicants, log: log}

	r.Route("/applications", func(ar chi.Router) {
		ar.Post("/", submitHandler(h))
		ar.Get("/", listHandler(h))
		ar.Get("/stats", statsHandler(h))
		ar.Get("/{applicationID}", getHandler(h))
		ar.Put("/{applicationID}/status", reviewHandler(h))
		ar.Delete("/{applicationID}", deleteHandler(h))
	})
}

type applicantInfoPayload struct {
	Phone           string      `json:"phone"`
	Address         string      `json:"address"`
	HousingType     HousingType `json:"housingType" enums:"House,Apartment,Condo,Other"`
	HasYard         bool        `json:"hasYard"`
	HasPets         bool        `json:"hasPets"`
	PetsDescription string      `json:"petsDescription,omitempty"`
	Experience      string      `json:"experience"`
	Reason          string      `json:"reason"`
}

type submitRequest struct {
	Pet           string               `json:"pet"`
	ApplicantInfo applicantInfoPayload `json:"applicantInfo"`
}

type reviewRequest struct {
	Status      Status `json:"status" enums:"Approved,Rejected"`
	ReviewNotes string `json:"reviewNotes"`
}

type petSummary struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Species pets.Species `json:"species"`
	Breed   string       `json:"breed"`
	Status  pets.Status  `json:"status"`
	Photos  []string     `json:"photos"`
}

type applicantSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// applicationResponse embebe los resúmenes de mascota y solicitante.
// Si la mascota ya no existe, pet sale null.
type applicationResponse struct {
	ID            string               `json:"id"`
	Pet           *petSummary          `json:"pet"`
	PetID         string               `json:"petId"`
	Applicant     applicantSummary     `json:"applicant"`
	ApplicantInfo applicantInfoPayload `json:"applicantInfo"`
	Status        Status               `json:"status"`
	ReviewedBy    string               `json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time           `json:"reviewedAt,omitempty"`
	ReviewNotes   string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// submitHandler godoc
// @Summary Enviar solicitud de adopción
// @Description Crea una solicitud Pending. La mascota debe estar Available o Pending (no Adopted) y queda en Pending. Un usuario no puede aplicar dos veces a la misma mascota. Autenticación: `X-Debug-User-ID` + `X-Debug-Role` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param payload body submitRequest true "Mascota y datos del solicitante"
// @Success 201 {object} httpresp.Envelope{data=applicationResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope "Mascota no disponible / solicitud duplicada"
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Failure 422 {object} httpresp.ErrorEnvelope
// @Router /applications [post]
func submitHandler(h handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, h.log, ErrUnauthenticated)
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := h.wf.Submit(r.Context(), actor, req.Pet, req.ApplicantInfo.toInfo())
		if err != nil {
			httpresp.Error(w, h.log, err)
			return
		}
		httpresp.Created(w, "Application submitted successfully", h.toResponse(r.Context(), a))
	}
}

// listHandler godoc
// @Summary Listar solicitudes
// @Description Un admin ve todas y puede filtrar por estado y mascota; un usuario ve solo las suyas (el filtro petId se ignora).
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param page query int false "Página (desde 1)"
// @Param limit query int false "Tamaño de página (1-100). Por defecto 10"
// @Param status query string false "Estado" Enums(Pending, Approved, Rejected)
// @Param petId query string false "Solo admin: ID de mascota"
// @Success 200 {object} httpresp.Envelope{data=[]applicationResponse}
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Router /applications [get]
func listHandler(h handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, h.log, ErrUnauthenticated)
			return
		}

		page := httpresp.ParsePage(r, defaultPageLimit)
		q := r.URL.Query()

		items, total, err := h.wf.List(r.Context(), actor, ListQuery{
			Status: Status(strings.TrimSpace(q.Get("status"))),
			PetID:  strings.TrimSpace(q.Get("petId")),
			Skip:   page.Skip(),
			Limit:  page.Limit,
		})
		if err != nil {
			httpresp.Error(w, h.log, err)
			return
		}

		out := make([]applicationResponse, 0, len(items))
		for _, a := range items {
			out = append(out, h.toResponse(r.Context(), a))
		}
		httpresp.Paginated(w, "Applications retrieved successfully", out, page, total)
	}
}

// statsHandler godoc
// @Summary Estadísticas de solicitudes
// @Description Conteo por estado. Solo admin.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Success 200 {object} httpresp.Envelope{data=Stats}
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Router /applications/stats [get]
func statsHandler(h handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, h.log, ErrUnauthenticated)
			return
		}

		st, err := h.wf.Stats(r.Context(), actor)
		if err != nil {
			httpresp.Error(w, h.log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Statistics retrieved successfully", st)
	}
}

// getHandler godoc
// @Summary Obtener solicitud
// @Description Un admin puede ver cualquiera; un usuario solo las propias.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param applicationID path string true "ID de la solicitud"
// @Success 200 {object} httpresp.Envelope{data=applicationResponse}
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /applications/{applicationID} [get]
func getHandler(h handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, h.log, ErrUnauthenticated)
			return
		}

		a, err := h.wf.Get(r.Context(), actor, chi.URLParam(r, "applicationID"))
		if err != nil {
			httpresp.Error(w, h.log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Application retrieved successfully", h.toResponse(r.Context(), a))
	}
}

// reviewHandler godoc
// @Summary Revisar solicitud
// @Description Aprueba o rechaza una solicitud Pending. Al aprobar, la mascota pasa a Adopted y el resto de las Pending de esa mascota se rechazan. Al rechazar, la mascota vuelve a Available si no quedan Pending. Solo admin.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param applicationID path string true "ID de la solicitud"
// @Param payload body reviewRequest true "Resultado y notas"
// @Success 200 {object} httpresp.Envelope{data=applicationResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope "Estado inválido / ya revisada"
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /applications/{applicationID}/status [put]
func reviewHandler(h handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, h.log, ErrUnauthenticated)
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		a, err := h.wf.Review(r.Context(), actor, chi.URLParam(r, "applicationID"), req.Status, req.ReviewNotes)
		if err != nil {
			httpresp.Error(w, h.log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Application status updated successfully", h.toResponse(r.Context(), a))
	}
}

// deleteHandler godoc
// @Summary Retirar solicitud
// @Description Borra una solicitud Pending (el solicitante o un admin). Si era la última Pending, la mascota vuelve a Available.
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param applicationID path string true "ID de la solicitud"
// @Success 200 {object} httpresp.Envelope
// @Failure 400 {object} httpresp.ErrorEnvelope "La solicitud ya fue revisada"
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /applications/{applicationID} [delete]
func deleteHandler(h handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, h.log, ErrUnauthenticated)
			return
		}

		if err := h.wf.Delete(r.Context(), actor, chi.URLParam(r, "applicationID")); err != nil {
			httpresp.Error(w, h.log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Application deleted successfully", nil)
	}
}

func (p applicantInfoPayload) toInfo() ApplicantInfo {
	return ApplicantInfo{
		Phone:           p.Phone,
		Address:         p.Address,
		HousingType:     p.HousingType,
		HasYard:         p.HasYard,
		HasPets:         p.HasPets,
		PetsDescription: p.PetsDescription,
		Experience:      p.Experience,
		Reason:          p.Reason,
	}
}

// toResponse: los lookups fallidos no rompen la respuesta, solo dejan el resumen vacío.
func (h handlerDeps) toResponse(ctx context.Context, a Application) applicationResponse {
	out := applicationResponse{
		ID:        a.ID,
		PetID:     a.PetID,
		Applicant: applicantSummary{ID: a.ApplicantID},
		ApplicantInfo: applicantInfoPayload{
			Phone:           a.Info.Phone,
			Address:         a.Info.Address,
			HousingType:     a.Info.HousingType,
			HasYard:         a.Info.HasYard,
			HasPets:         a.Info.HasPets,
			PetsDescription: a.Info.PetsDescription,
			Experience:      a.Info.Experience,
			Reason:          a.Info.Reason,
		},
		Status:      a.Status,
		ReviewedBy:  a.ReviewedBy,
		ReviewedAt:  a.ReviewedAt,
		ReviewNotes: a.ReviewNotes,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}

	if h.pets != nil {
		if p, err := h.pets.Get(ctx, a.PetID); err == nil {
			photos := p.Photos
			if photos == nil {
				photos = []string{}
			}
			out.Pet = &petSummary{
				ID:      p.ID,
				Name:    p.Name,
				Species: p.Species,
				Breed:   p.Breed,
				Status:  p.Status,
				Photos:  photos,
			}
		}
	}
	if h.applicants != nil {
		if name, email, err := h.applicants.Contact(ctx, a.ApplicantID); err == nil {
			out.Applicant.Name = name
			out.Applicant.Email = email
		}
	}
	return out
}
