package pets

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/apierr"
	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

const defaultPageLimit = 12

// multipart: 10 fotos de 5MB + margen para headers.
const maxUploadBody = MaxPhotosPerUpload*MaxPhotoBytes + 1<<20

var errUnauthenticated = apierr.Unauthorized("Not authorized to access this route")

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Get("/", listPetsHandler(svc, log))
		pr.Get("/filters", filterOptionsHandler(svc, log))
		pr.Get("/admin/stats", statsHandler(svc, log))
		pr.Post("/", createPetHandler(svc, log))

		pr.Get("/{petID}", getPetHandler(svc, log))
		pr.Put("/{petID}", updatePetHandler(svc, log))
		pr.Delete("/{petID}", deletePetHandler(svc, log))
		pr.Patch("/{petID}/status", setStatusHandler(svc, log))
		pr.Post("/{petID}/photos", uploadPhotosHandler(svc, log))
	})
}

// petRequest sirve para alta y edición: en PUT solo se tocan los campos enviados.
type petRequest struct {
	Name           *string  `json:"name"`
	Species        *Species `json:"species" enums:"Dog,Cat,Bird,Rabbit,Other"`
	Breed          *string  `json:"breed"`
	Age            *int     `json:"age"`
	Gender         *Gender  `json:"gender" enums:"Male,Female"`
	Size           *Size    `json:"size" enums:"Small,Medium,Large"`
	Color          *string  `json:"color"`
	Description    *string  `json:"description"`
	MedicalHistory *string  `json:"medicalHistory"`
	Vaccinated     *bool    `json:"vaccinated"`
	Neutered       *bool    `json:"neutered"`
	AdoptionFee    *float64 `json:"adoptionFee"`
	Location       *string  `json:"location"`
	Status         *Status  `json:"status" enums:"Available,Pending,Adopted"`
}

type statusRequest struct {
	Status Status `json:"status" enums:"Available,Pending,Adopted"`
}

// PetResponse es la representación pública de una mascota.
type PetResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Species        Species   `json:"species"`
	Breed          string    `json:"breed"`
	Age            int       `json:"age"`
	Gender         Gender    `json:"gender"`
	Size           Size      `json:"size"`
	Color          string    `json:"color,omitempty"`
	Description    string    `json:"description"`
	MedicalHistory string    `json:"medicalHistory,omitempty"`
	Vaccinated     bool      `json:"vaccinated"`
	Neutered       bool      `json:"neutered"`
	Photos         []string  `json:"photos"`
	Status         Status    `json:"status"`
	AdoptionFee    float64   `json:"adoptionFee"`
	Location       string    `json:"location,omitempty"`
	AddedBy        string    `json:"addedBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Lista paginada de mascotas, más nuevas primero. Sin `status` se listan solo las Available; un admin puede pedir todas con `adminView=true`.
// @Tags pets
// @Produce json
// @Param page query int false "Página (desde 1)"
// @Param limit query int false "Tamaño de página (1-100). Por defecto 12"
// @Param search query string false "Texto libre sobre nombre o raza"
// @Param species query string false "Especie" Enums(Dog, Cat, Bird, Rabbit, Other)
// @Param breed query string false "Raza (substring)"
// @Param gender query string false "Sexo" Enums(Male, Female)
// @Param size query string false "Tamaño" Enums(Small, Medium, Large)
// @Param minAge query int false "Edad mínima"
// @Param maxAge query int false "Edad máxima"
// @Param status query string false "Estado" Enums(Available, Pending, Adopted)
// @Param adminView query bool false "Solo admin: incluir todos los estados"
// @Success 200 {object} httpresp.Envelope{data=[]PetResponse}
// @Failure 500 {object} httpresp.ErrorEnvelope
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		page := httpresp.ParsePage(r, defaultPageLimit)

		f := BuildFilter(r.URL.Query(), actor)
		f.Skip = page.Skip()
		f.Limit = page.Limit

		items, total, err := svc.List(r.Context(), f)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}
		httpresp.Paginated(w, "Pets retrieved successfully", out, page, total)
	}
}

// filterOptionsHandler godoc
// @Summary Opciones de filtro
// @Description Valores distintos de especie, raza y ubicación para armar los filtros del catálogo.
// @Tags pets
// @Produce json
// @Success 200 {object} httpresp.Envelope{data=FilterOptions}
// @Failure 500 {object} httpresp.ErrorEnvelope
// @Router /pets/filters [get]
func filterOptionsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := svc.FilterOptions(r.Context())
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Filter options retrieved successfully", opts)
	}
}

// statsHandler godoc
// @Summary Estadísticas de mascotas
// @Description Conteo por estado y por especie. Solo admin.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Success 200 {object} httpresp.Envelope{data=Stats}
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Router /pets/admin/stats [get]
func statsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, errUnauthenticated)
			return
		}

		st, err := svc.Stats(r.Context(), actor)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Statistics retrieved successfully", st)
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} httpresp.Envelope{data=PetResponse}
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.Get(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Pet retrieved successfully", ToResponse(p))
	}
}

// createPetHandler godoc
// @Summary Publicar mascota
// @Description Crea una mascota para adopción. Solo admin. Autenticación: `X-Debug-User-ID` + `X-Debug-Role` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param payload body petRequest true "Datos de la mascota"
// @Success 201 {object} httpresp.Envelope{data=PetResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 422 {object} httpresp.ErrorEnvelope
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, errUnauthenticated)
			return
		}

		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Create(r.Context(), actor, req.createInput())
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Created(w, "Pet created successfully", ToResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Editar mascota
// @Description Actualiza solo los campos enviados. Solo admin. Cambiar `status` desde acá cuenta como override manual.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param petID path string true "ID de la mascota"
// @Param payload body petRequest true "Campos a modificar"
// @Success 200 {object} httpresp.Envelope{data=PetResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Failure 422 {object} httpresp.ErrorEnvelope
// @Router /pets/{petID} [put]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, errUnauthenticated)
			return
		}

		var req petRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.Update(r.Context(), actor, chi.URLParam(r, "petID"), req.updateInput())
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Pet updated successfully", ToResponse(p))
	}
}

// deletePetHandler godoc
// @Summary Eliminar mascota
// @Description Borrado incondicional (no revisa solicitudes). Solo admin.
// @Tags pets
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} httpresp.Envelope
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, errUnauthenticated)
			return
		}

		if err := svc.Delete(r.Context(), actor, chi.URLParam(r, "petID")); err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Pet deleted successfully", nil)
	}
}

// setStatusHandler godoc
// @Summary Forzar estado de mascota
// @Description Override manual del estado. No toca las solicitudes asociadas. Solo admin.
// @Tags pets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param petID path string true "ID de la mascota"
// @Param payload body statusRequest true "Nuevo estado"
// @Success 200 {object} httpresp.Envelope{data=PetResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /pets/{petID}/status [patch]
func setStatusHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, errUnauthenticated)
			return
		}

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		p, err := svc.SetStatus(r.Context(), actor, chi.URLParam(r, "petID"), req.Status)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Pet status updated successfully", ToResponse(p))
	}
}

// uploadPhotosHandler godoc
// @Summary Subir fotos
// @Description Agrega hasta 10 imágenes (jpeg, jpg, png, gif, webp; 5MB c/u) al final de la galería. Solo admin.
// @Tags pets
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param X-Debug-Role header string false "Solo en modo dev, rol (user|admin)"
// @Param petID path string true "ID de la mascota"
// @Param photos formData file true "Imágenes"
// @Success 200 {object} httpresp.Envelope{data=PetResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 403 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /pets/{petID}/photos [post]
func uploadPhotosHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, errUnauthenticated)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				httpresp.Error(w, log, ErrPhotoTooLarge)
				return
			}
			httpresp.Error(w, log, ErrNoPhotos)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		headers := r.MultipartForm.File["photos"]
		files := make([]PhotoUpload, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				httpresp.Error(w, log, err)
				return
			}
			defer closeQuietly(f)
			files = append(files, PhotoUpload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        f,
			})
		}

		p, err := svc.AddPhotos(r.Context(), actor, chi.URLParam(r, "petID"), files)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		msg := "Successfully uploaded " + strconv.Itoa(len(files)) + " image(s)"
		httpresp.Success(w, http.StatusOK, msg, ToResponse(p))
	}
}

func (req petRequest) createInput() CreateInput {
	in := CreateInput{
		Name:           deref(req.Name),
		Breed:          deref(req.Breed),
		Color:          deref(req.Color),
		Description:    deref(req.Description),
		MedicalHistory: deref(req.MedicalHistory),
		Location:       deref(req.Location),
	}
	if req.Species != nil {
		in.Species = *req.Species
	}
	if req.Age != nil {
		in.Age = *req.Age
	}
	if req.Gender != nil {
		in.Gender = *req.Gender
	}
	if req.Size != nil {
		in.Size = *req.Size
	}
	if req.Vaccinated != nil {
		in.Vaccinated = *req.Vaccinated
	}
	if req.Neutered != nil {
		in.Neutered = *req.Neutered
	}
	if req.AdoptionFee != nil {
		in.AdoptionFee = *req.AdoptionFee
	}
	if req.Status != nil {
		in.Status = *req.Status
	}
	return in
}

func (req petRequest) updateInput() UpdateInput {
	return UpdateInput{
		Name:           req.Name,
		Species:        req.Species,
		Breed:          req.Breed,
		Age:            req.Age,
		Gender:         req.Gender,
		Size:           req.Size,
		Color:          req.Color,
		Description:    req.Description,
		MedicalHistory: req.MedicalHistory,
		Vaccinated:     req.Vaccinated,
		Neutered:       req.Neutered,
		AdoptionFee:    req.AdoptionFee,
		Location:       req.Location,
		Status:         req.Status,
	}
}

// ToResponse lo reusan otros módulos para embeber el resumen de la mascota.
func ToResponse(p Pet) PetResponse {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	return PetResponse{
		ID:             p.ID,
		Name:           p.Name,
		Species:        p.Species,
		Breed:          p.Breed,
		Age:            p.Age,
		Gender:         p.Gender,
		Size:           p.Size,
		Color:          p.Color,
		Description:    p.Description,
		MedicalHistory: p.MedicalHistory,
		Vaccinated:     p.Vaccinated,
		Neutered:       p.Neutered,
		Photos:         photos,
		Status:         p.Status,
		AdoptionFee:    p.AdoptionFee,
		Location:       p.Location,
		AddedBy:        p.AddedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func closeQuietly(f multipart.File) { _ = f.Close() }
