package applications

import (
	"context"
	"time"
)

type Repository interface {
	// Create devuelve ErrDuplicateApplication si ya existe el par (pet, applicant).
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	ExistsForPair(ctx context.Context, petID, applicantID string) (bool, error)

	// TransitionStatus aplica la revisión solo si el estado actual es from
	// (compare-and-swap). Si no lo es devuelve ErrAlreadyReviewed.
	TransitionStatus(ctx context.Context, id string, from Status, rv Review) (Application, error)

	// RejectPending pasa a Rejected, en una sola operación, todas las
	// solicitudes Pending de la mascota salvo exceptID. Devuelve los ids tocados.
	RejectPending(ctx context.Context, petID, exceptID, notes string, at time.Time) ([]string, error)

	// Delete borra solo si el estado actual es from; si no, ErrOnlyPendingDeletable.
	Delete(ctx context.Context, id string, from Status) error

	List(ctx context.Context, f ListFilter) ([]Application, error)
	Count(ctx context.Context, f ListFilter) (int, error)
	StatusCounts(ctx context.Context) (map[Status]int, error)
}

// Review es el resultado que se estampa al salir de Pending.
type Review struct {
	Status     Status
	ReviewedBy string
	ReviewedAt time.Time
	Notes      string
}

// ListFilter: campos vacíos = sin filtro. Orden: más nuevas primero.
type ListFilter struct {
	ApplicantID string
	PetID       string
	Status      Status
	ExcludeID   string

	Skip  int
	Limit int // 0 = sin límite
}

func (f ListFilter) Matches(a Application) bool {
	if f.ApplicantID != "" && a.ApplicantID != f.ApplicantID {
		return false
	}
	if f.PetID != "" && a.PetID != f.PetID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.ExcludeID != "" && a.ID == f.ExcludeID {
		return false
	}
	return true
}

// Transactor corre fn como una unidad: una transacción SQL en Postgres,
// un lock global del workflow en memoria.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
