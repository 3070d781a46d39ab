package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption/internal/domain/events"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/validate"
	"pet-adoption/internal/ports/auth"

	"github.com/google/uuid"
)

// PetStore es la parte del store de mascotas que el workflow necesita.
// Toda secuencia del workflow arranca con GetByIDForUpdate: las
// transacciones sobre una misma mascota quedan serializadas en su fila.
type PetStore interface {
	GetByID(ctx context.Context, id string) (pets.Pet, error)
	GetByIDForUpdate(ctx context.Context, id string) (pets.Pet, error)
	UpdateStatus(ctx context.Context, id string, status pets.Status, at time.Time) error
}

// Workflow mantiene sincronizado el estado de cada mascota con el de sus solicitudes:
//
//	Adopted  <=> hay una solicitud Approved
//	Pending  <=> hay al menos una Pending y ninguna Approved
//	Available <=> no hay Pending ni Approved
//
// Un override manual del admin sobre la mascota queda fuera de esta regla.
type Workflow struct {
	apps    Repository
	pets    PetStore
	tx      Transactor
	events  events.Recorder
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

type Deps struct {
	Tx      Transactor
	Events  events.Recorder
	Metrics *metrics.Metrics
	Log     logger.Logger
}

func NewWorkflow(apps Repository, petStore PetStore, deps Deps) *Workflow {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Workflow{
		apps:    apps,
		pets:    petStore,
		tx:      deps.Tx,
		events:  deps.Events,
		metrics: deps.Metrics,
		log:     log,
		now:     time.Now,
	}
}

// petChange registra un cambio de estado de mascota hecho dentro de la tx,
// para publicarlo (métricas, actividad) recién después del commit.
type petChange struct {
	petID    string
	from, to pets.Status
}

func (w *Workflow) Submit(ctx context.Context, actor auth.Actor, petID string, info ApplicantInfo) (Application, error) {
	if !actor.Authenticated() {
		return Application{}, ErrUnauthenticated
	}
	if !actor.Can(auth.ActionApplicationSubmit) {
		return Application{}, ErrSubmitForbidden
	}

	petID = strings.TrimSpace(petID)
	info = normalizeInfo(info)
	if err := validateSubmission(petID, info); err != nil {
		return Application{}, err
	}

	now := w.now()
	app := Application{
		ID:          uuid.NewString(),
		PetID:       petID,
		ApplicantID: actor.ID,
		Info:        info,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var change *petChange
	err := w.withinTx(ctx, func(ctx context.Context) error {
		pet, err := w.pets.GetByIDForUpdate(ctx, petID)
		if err != nil {
			return err
		}
		// Una mascota Pending sigue aceptando solicitudes; solo Adopted las corta.
		if pet.Status == pets.StatusAdopted {
			return ErrPetNotAvailable
		}

		exists, err := w.apps.ExistsForPair(ctx, petID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateApplication
		}

		if err := w.apps.Create(ctx, app); err != nil {
			return err
		}
		if pet.Status == pets.StatusPending {
			return nil
		}
		if err := w.pets.UpdateStatus(ctx, petID, pets.StatusPending, now); err != nil {
			return err
		}
		change = &petChange{petID: petID, from: pet.Status, to: pets.StatusPending}
		return nil
	})
	if err != nil {
		return Application{}, err
	}

	w.transitioned(app, "", StatusPending, 1)
	w.record(ctx, events.RecordInput{
		PetID:         petID,
		Type:          events.EventTypeApplicationSubmitted,
		Title:         "Adoption application submitted",
		ApplicationID: app.ID,
		Actor:         events.Actor{Type: events.ActorTypeApplicantUser, ID: actor.ID},
	})
	w.petStatusChanged(ctx, change, app.ID)
	return app, nil
}

func (w *Workflow) Review(ctx context.Context, actor auth.Actor, id string, status Status, notes string) (Application, error) {
	if !actor.Authenticated() {
		return Application{}, ErrUnauthenticated
	}
	if !actor.Can(auth.ActionApplicationReview) {
		return Application{}, ErrReviewForbidden
	}
	if !status.IsReviewOutcome() {
		return Application{}, ErrInvalidReviewStatus
	}

	now := w.now()
	rv := Review{
		Status:     status,
		ReviewedBy: actor.ID,
		ReviewedAt: now,
		Notes:      strings.TrimSpace(notes),
	}

	var (
		updated  Application
		cascaded []string
		change   *petChange
	)
	err := w.withinTx(ctx, func(ctx context.Context) error {
		current, err := w.apps.GetByID(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		if err := w.lockPet(ctx, current.PetID); err != nil {
			return err
		}
		if current.Status != StatusPending {
			return ErrAlreadyReviewed
		}

		updated, err = w.apps.TransitionStatus(ctx, current.ID, StatusPending, rv)
		if err != nil {
			return err
		}

		if status == StatusApproved {
			cascaded, err = w.apps.RejectPending(ctx, current.PetID, current.ID, CascadeRejectionNotes, now)
			if err != nil {
				return err
			}
			change, err = w.setPetStatus(ctx, current.PetID, pets.StatusAdopted, now)
			return err
		}

		change, err = w.releaseIfIdle(ctx, current.PetID, now)
		return err
	})
	if err != nil {
		return Application{}, err
	}

	w.transitioned(updated, StatusPending, status, 1)
	evType := events.EventTypeApplicationRejected
	title := "Application rejected"
	if status == StatusApproved {
		evType = events.EventTypeApplicationApproved
		title = "Application approved"
	}
	w.record(ctx, events.RecordInput{
		PetID:         updated.PetID,
		Type:          evType,
		Title:         title,
		Notes:         rv.Notes,
		ApplicationID: updated.ID,
		Actor:         events.Actor{Type: events.ActorTypeAdminUser, ID: actor.ID},
	})

	if len(cascaded) > 0 {
		w.metrics.ApplicationTransition(string(StatusPending), string(StatusRejected), len(cascaded))
		w.log.Info("sibling applications rejected", map[string]any{
			"pet_id":         updated.PetID,
			"application_id": updated.ID,
			"count":          len(cascaded),
		})
		for _, sid := range cascaded {
			w.record(ctx, events.RecordInput{
				PetID:         updated.PetID,
				Type:          events.EventTypeApplicationRejected,
				Title:         "Application rejected",
				Notes:         CascadeRejectionNotes,
				ApplicationID: sid,
				Actor:         events.Actor{Type: events.ActorTypeSystem},
			})
		}
	}
	w.petStatusChanged(ctx, change, updated.ID)
	return updated, nil
}

// Delete retira una solicitud Pending (el solicitante o un admin).
func (w *Workflow) Delete(ctx context.Context, actor auth.Actor, id string) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}

	var (
		deleted Application
		change  *petChange
	)
	err := w.withinTx(ctx, func(ctx context.Context) error {
		current, err := w.apps.GetByID(ctx, strings.TrimSpace(id))
		if err != nil {
			return err
		}
		if !actor.CanOnOwned(auth.ActionApplicationDeleteAny, current.ApplicantID) {
			return ErrDeleteForbidden
		}
		if err := w.lockPet(ctx, current.PetID); err != nil {
			return err
		}
		if current.Status != StatusPending {
			return ErrOnlyPendingDeletable
		}

		if err := w.apps.Delete(ctx, current.ID, StatusPending); err != nil {
			return err
		}
		deleted = current

		change, err = w.releaseIfIdle(ctx, current.PetID, w.now())
		return err
	})
	if err != nil {
		return err
	}

	w.transitioned(deleted, StatusPending, "Deleted", 1)
	actorType := events.ActorTypeApplicantUser
	if actor.ID != deleted.ApplicantID {
		actorType = events.ActorTypeAdminUser
	}
	w.record(ctx, events.RecordInput{
		PetID:         deleted.PetID,
		Type:          events.EventTypeApplicationWithdrawn,
		Title:         "Application withdrawn",
		ApplicationID: deleted.ID,
		Actor:         events.Actor{Type: actorType, ID: actor.ID},
	})
	w.petStatusChanged(ctx, change, deleted.ID)
	return nil
}

// ListQuery son los filtros pedidos por el cliente.
type ListQuery struct {
	Status Status
	PetID  string
	Skip   int
	Limit  int
}

// List: quien no es admin ve solo sus solicitudes, sin importar los filtros.
func (w *Workflow) List(ctx context.Context, actor auth.Actor, q ListQuery) ([]Application, int, error) {
	if !actor.Authenticated() {
		return nil, 0, ErrUnauthenticated
	}

	f := ListFilter{
		Status: q.Status,
		Skip:   q.Skip,
		Limit:  q.Limit,
	}
	if actor.Can(auth.ActionApplicationFilterAny) {
		f.PetID = strings.TrimSpace(q.PetID)
	} else {
		f.ApplicantID = actor.ID
	}

	total, err := w.apps.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items, err := w.apps.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (w *Workflow) Get(ctx context.Context, actor auth.Actor, id string) (Application, error) {
	if !actor.Authenticated() {
		return Application{}, ErrUnauthenticated
	}

	a, err := w.apps.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Application{}, err
	}
	if !actor.CanOnOwned(auth.ActionApplicationViewAny, a.ApplicantID) {
		return Application{}, ErrViewForbidden
	}
	return a, nil
}

type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func (w *Workflow) Stats(ctx context.Context, actor auth.Actor) (Stats, error) {
	if !actor.Can(auth.ActionStatsView) {
		return Stats{}, ErrStatsForbidden
	}

	counts, err := w.apps.StatusCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{ByStatus: make(map[string]int, len(AllStatuses))}
	for _, s := range AllStatuses {
		st.ByStatus[string(s)] = counts[s]
		st.Total += counts[s]
	}
	return st, nil
}

// lockPet toma el lock de la mascota antes de tocar sus solicitudes. Una
// mascota borrada no traba la revisión: no hay fila que bloquear.
func (w *Workflow) lockPet(ctx context.Context, petID string) error {
	_, err := w.pets.GetByIDForUpdate(ctx, petID)
	if errors.Is(err, pets.ErrNotFound) {
		return nil
	}
	return err
}

// releaseIfIdle vuelve la mascota a Available si ya no quedan Pending.
// Con otras Pending vivas la mascota no se toca.
func (w *Workflow) releaseIfIdle(ctx context.Context, petID string, at time.Time) (*petChange, error) {
	n, err := w.apps.Count(ctx, ListFilter{PetID: petID, Status: StatusPending})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, nil
	}
	return w.setPetStatus(ctx, petID, pets.StatusAvailable, at)
}

// setPetStatus tolera que la mascota ya no exista: el borrado de mascotas
// es incondicional y no debe trabar la revisión de sus solicitudes.
func (w *Workflow) setPetStatus(ctx context.Context, petID string, to pets.Status, at time.Time) (*petChange, error) {
	pet, err := w.pets.GetByID(ctx, petID)
	if errors.Is(err, pets.ErrNotFound) {
		w.log.Warn("pet missing while syncing status", map[string]any{"pet_id": petID, "to": string(to)})
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pet.Status == to {
		return nil, nil
	}
	if err := w.pets.UpdateStatus(ctx, petID, to, at); err != nil {
		return nil, err
	}
	return &petChange{petID: petID, from: pet.Status, to: to}, nil
}

func (w *Workflow) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if w.tx == nil {
		return fn(ctx)
	}
	return w.tx.WithinTx(ctx, fn)
}

func (w *Workflow) transitioned(a Application, from, to Status, n int) {
	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "none"
	}
	w.metrics.ApplicationTransition(fromLabel, string(to), n)
	w.log.Info("application transition", map[string]any{
		"application_id": a.ID,
		"pet_id":         a.PetID,
		"from":           fromLabel,
		"to":             string(to),
	})
}

func (w *Workflow) petStatusChanged(ctx context.Context, c *petChange, applicationID string) {
	if c == nil {
		return
	}
	w.metrics.PetStatusChanged(string(c.to), "workflow")
	w.record(ctx, events.RecordInput{
		PetID:         c.petID,
		Type:          events.EventTypePetStatusChanged,
		Title:         string(c.from) + " -> " + string(c.to),
		ApplicationID: applicationID,
		Actor:         events.Actor{Type: events.ActorTypeSystem},
	})
}

// record es best effort: el historial no puede romper una transición ya confirmada.
func (w *Workflow) record(ctx context.Context, in events.RecordInput) {
	if w.events == nil {
		return
	}
	if err := w.events.Record(ctx, in); err != nil {
		w.log.Warn("activity record failed", map[string]any{
			"pet_id":         in.PetID,
			"application_id": in.ApplicationID,
			"type":           string(in.Type),
			"err":            err,
		})
	}
}

func normalizeInfo(in ApplicantInfo) ApplicantInfo {
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.HousingType = HousingType(strings.TrimSpace(string(in.HousingType)))
	in.PetsDescription = strings.TrimSpace(in.PetsDescription)
	in.Experience = strings.TrimSpace(in.Experience)
	in.Reason = strings.TrimSpace(in.Reason)
	return in
}

func validateSubmission(petID string, in ApplicantInfo) error {
	var v validate.Errors
	v.Required("pet", petID, "Pet ID is required")
	v.Required("applicantInfo.phone", in.Phone, "Please provide phone number")
	v.Required("applicantInfo.address", in.Address, "Please provide address")
	v.OneOf("applicantInfo.housingType", string(in.HousingType),
		[]string{string(HousingHouse), string(HousingApartment), string(HousingCondo), string(HousingOther)},
		"Housing type must be House, Apartment, Condo, or Other")
	v.Required("applicantInfo.experience", in.Experience, "Please describe your experience with pets")
	v.Required("applicantInfo.reason", in.Reason, "Please provide reason for adoption")
	v.MaxLen("applicantInfo.reason", in.Reason, 500, "Reason cannot be more than 500 characters")
	return v.Err()
}
