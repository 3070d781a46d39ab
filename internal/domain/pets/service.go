package pets

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"pet-adoption/internal/domain/events"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/validate"
	"pet-adoption/internal/ports/auth"

	"github.com/google/uuid"
)

const (
	MaxPhotosPerUpload = 10
	MaxPhotoBytes      = 5 << 20
)

var allowedPhotoExt = map[string]string{
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type Service struct {
	repo    Repository
	photos  PhotoStore
	events  events.Recorder
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

// Deps agrupa los colaboradores opcionales del servicio.
type Deps struct {
	Photos  PhotoStore
	Events  events.Recorder
	Metrics *metrics.Metrics
	Log     logger.Logger
}

func NewService(repo Repository, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		photos:  deps.Photos,
		events:  deps.Events,
		metrics: deps.Metrics,
		log:     log,
		now:     time.Now,
	}
}

type CreateInput struct {
	Name           string
	Species        Species
	Breed          string
	Age            int
	Gender         Gender
	Size           Size
	Color          string
	Description    string
	MedicalHistory string
	Vaccinated     bool
	Neutered       bool
	AdoptionFee    float64
	Location       string
	Status         Status // opcional, por defecto Available
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateInput) (Pet, error) {
	if !actor.Can(auth.ActionPetCreate) {
		return Pet{}, ErrForbidden
	}

	status := in.Status
	if status == "" {
		status = StatusAvailable
	}

	now := s.now()
	p := Pet{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Species:        in.Species,
		Breed:          strings.TrimSpace(in.Breed),
		Age:            in.Age,
		Gender:         in.Gender,
		Size:           in.Size,
		Color:          strings.TrimSpace(in.Color),
		Description:    strings.TrimSpace(in.Description),
		MedicalHistory: strings.TrimSpace(in.MedicalHistory),
		Vaccinated:     in.Vaccinated,
		Neutered:       in.Neutered,
		Photos:         []string{},
		Status:         status,
		AdoptionFee:    in.AdoptionFee,
		Location:       strings.TrimSpace(in.Location),
		AddedBy:        actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validatePet(p); err != nil {
		return Pet{}, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}

	s.record(ctx, events.RecordInput{
		PetID: p.ID,
		Type:  events.EventTypePetCreated,
		Title: "Pet listed for adoption",
		Actor: events.Actor{Type: events.ActorTypeAdminUser, ID: actor.ID},
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List devuelve la página pedida y el total que matchea el filtro.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
	total, err := s.repo.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Name           *string
	Species        *Species
	Breed          *string
	Age            *int
	Gender         *Gender
	Size           *Size
	Color          *string
	Description    *string
	MedicalHistory *string
	Vaccinated     *bool
	Neutered       *bool
	AdoptionFee    *float64
	Location       *string
	Status         *Status
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, in UpdateInput) (Pet, error) {
	if !actor.Can(auth.ActionPetUpdate) {
		return Pet{}, ErrForbidden
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	prevStatus := p.Status

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		p.Species = *in.Species
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Size != nil {
		p.Size = *in.Size
	}
	if in.Color != nil {
		p.Color = strings.TrimSpace(*in.Color)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = strings.TrimSpace(*in.MedicalHistory)
	}
	if in.Vaccinated != nil {
		p.Vaccinated = *in.Vaccinated
	}
	if in.Neutered != nil {
		p.Neutered = *in.Neutered
	}
	if in.AdoptionFee != nil {
		p.AdoptionFee = *in.AdoptionFee
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}

	if err := validatePet(p); err != nil {
		return Pet{}, err
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}

	s.record(ctx, events.RecordInput{
		PetID: p.ID,
		Type:  events.EventTypePetUpdated,
		Title: "Pet profile updated",
		Actor: events.Actor{Type: events.ActorTypeAdminUser, ID: actor.ID},
	})
	if p.Status != prevStatus {
		s.statusOverridden(ctx, actor, p.ID, prevStatus, p.Status)
	}
	return p, nil
}

// Delete no verifica solicitudes vivas: el borrado es incondicional.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.Can(auth.ActionPetDelete) {
		return ErrForbidden
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetStatus es el override manual del admin. No reconcilia solicitudes.
func (s *Service) SetStatus(ctx context.Context, actor auth.Actor, id string, status Status) (Pet, error) {
	if !actor.Can(auth.ActionPetSetStatus) {
		return Pet{}, ErrForbidden
	}
	if !status.Valid() {
		return Pet{}, ErrInvalidStatus
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	prev := p.Status

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, p.ID, status, now); err != nil {
		return Pet{}, err
	}
	p.Status = status
	p.UpdatedAt = now

	if prev != status {
		s.statusOverridden(ctx, actor, p.ID, prev, status)
	}
	return p, nil
}

// PhotoUpload es un archivo ya recibido por el handler.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (s *Service) AddPhotos(ctx context.Context, actor auth.Actor, id string, files []PhotoUpload) (Pet, error) {
	if !actor.Can(auth.ActionPetUploadPhotos) {
		return Pet{}, ErrForbidden
	}
	if len(files) == 0 {
		return Pet{}, ErrNoPhotos
	}
	if len(files) > MaxPhotosPerUpload {
		return Pet{}, ErrTooManyPhotos
	}
	for _, f := range files {
		if _, ok := allowedPhotoExt[strings.ToLower(filepath.Ext(f.Filename))]; !ok {
			return Pet{}, ErrPhotoInvalidType
		}
		if f.Size > MaxPhotoBytes {
			return Pet{}, ErrPhotoTooLarge
		}
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if s.photos == nil {
		return Pet{}, errPhotoStoreMissing
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		ct := f.ContentType
		if !strings.HasPrefix(ct, "image/") {
			ct = allowedPhotoExt[ext]
		}
		key := "pets/" + p.ID + "/" + uuid.NewString() + ext
		url, err := s.photos.Put(ctx, key, ct, f.Body, f.Size)
		if err != nil {
			return Pet{}, err
		}
		urls = append(urls, url)
	}

	updated, err := s.repo.AppendPhotos(ctx, p.ID, urls, s.now())
	if err != nil {
		return Pet{}, err
	}

	s.record(ctx, events.RecordInput{
		PetID: p.ID,
		Type:  events.EventTypePhotosAdded,
		Title: "Photos added",
		Notes: strings.Join(urls, "\n"),
		Actor: events.Actor{Type: events.ActorTypeAdminUser, ID: actor.ID},
	})
	return updated, nil
}

type Stats struct {
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"byStatus"`
	BySpecies map[string]int `json:"bySpecies"`
}

func (s *Service) Stats(ctx context.Context, actor auth.Actor) (Stats, error) {
	if !actor.Can(auth.ActionStatsView) {
		return Stats{}, ErrForbidden
	}

	byStatus, err := s.repo.CountBy(ctx, FieldStatus)
	if err != nil {
		return Stats{}, err
	}
	bySpecies, err := s.repo.CountBy(ctx, FieldSpecies)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{ByStatus: map[string]int{}, BySpecies: bySpecies}
	for _, status := range AllStatuses {
		st.ByStatus[string(status)] = byStatus[string(status)]
		st.Total += byStatus[string(status)]
	}
	return st, nil
}

type FilterOptions struct {
	Species   []string `json:"species"`
	Breeds    []string `json:"breeds"`
	Locations []string `json:"locations"`
}

func (s *Service) FilterOptions(ctx context.Context) (FilterOptions, error) {
	var (
		out FilterOptions
		err error
	)
	if out.Species, err = s.repo.Distinct(ctx, FieldSpecies); err != nil {
		return FilterOptions{}, err
	}
	if out.Breeds, err = s.repo.Distinct(ctx, FieldBreed); err != nil {
		return FilterOptions{}, err
	}
	if out.Locations, err = s.repo.Distinct(ctx, FieldLocation); err != nil {
		return FilterOptions{}, err
	}
	return out, nil
}

// Exists satisface la lookup que usa el historial de actividad.
func (s *Service) Exists(ctx context.Context, id string) error {
	_, err := s.Get(ctx, id)
	return err
}

func (s *Service) statusOverridden(ctx context.Context, actor auth.Actor, petID string, from, to Status) {
	s.metrics.PetStatusChanged(string(to), "admin")
	s.log.Info("pet status overridden", map[string]any{
		"pet_id": petID,
		"from":   string(from),
		"to":     string(to),
		"by":     actor.ID,
	})
	s.record(ctx, events.RecordInput{
		PetID: petID,
		Type:  events.EventTypePetStatusOverridden,
		Title: string(from) + " -> " + string(to),
		Actor: events.Actor{Type: events.ActorTypeAdminUser, ID: actor.ID},
	})
}

// record es best effort: un fallo del historial no tumba la operación.
func (s *Service) record(ctx context.Context, in events.RecordInput) {
	if s.events == nil {
		return
	}
	if err := s.events.Record(ctx, in); err != nil {
		s.log.Warn("activity record failed", map[string]any{
			"pet_id": in.PetID,
			"type":   string(in.Type),
			"err":    err,
		})
	}
}

func validatePet(p Pet) error {
	var v validate.Errors
	v.Required("name", p.Name, "Please provide pet name")
	v.MaxLen("name", p.Name, 50, "Name cannot be more than 50 characters")
	v.OneOf("species", string(p.Species), []string{"Dog", "Cat", "Bird", "Rabbit", "Other"}, "Please specify species")
	v.Required("breed", p.Breed, "Please provide breed")
	v.MinInt("age", p.Age, 0, "Age cannot be negative")
	v.OneOf("gender", string(p.Gender), []string{"Male", "Female"}, "Please specify gender")
	v.OneOf("size", string(p.Size), []string{"Small", "Medium", "Large"}, "Please provide a valid size")
	v.Required("description", p.Description, "Please provide description")
	v.MaxLen("description", p.Description, 1000, "Description cannot be more than 1000 characters")
	v.MaxLen("medicalHistory", p.MedicalHistory, 500, "Medical history cannot be more than 500 characters")
	v.MinFloat("adoptionFee", p.AdoptionFee, 0, "Adoption fee cannot be negative")
	v.OneOf("status", string(p.Status), []string{"Available", "Pending", "Adopted"}, "Please provide a valid status")
	return v.Err()
}
