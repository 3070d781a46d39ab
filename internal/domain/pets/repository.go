package pets

import (
	"context"
	"io"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	// GetByIDForUpdate lee la mascota bloqueándola para el resto de la
	// transacción en curso (SELECT ... FOR UPDATE en Postgres).
	GetByIDForUpdate(ctx context.Context, id string) (Pet, error)
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error

	// UpdateStatus es una escritura atómica de un solo documento.
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	AppendPhotos(ctx context.Context, id string, urls []string, at time.Time) (Pet, error)

	List(ctx context.Context, f ListFilter) ([]Pet, error)
	Count(ctx context.Context, f ListFilter) (int, error)

	// Distinct devuelve los valores distintos de un campo (species, breed, location).
	Distinct(ctx context.Context, field Field) ([]string, error)
	// CountBy agrupa por campo (status, species) para estadísticas.
	CountBy(ctx context.Context, field Field) (map[string]int, error)
}

// Field son los campos por los que se puede agrupar o listar valores distintos.
type Field string

const (
	FieldSpecies  Field = "species"
	FieldBreed    Field = "breed"
	FieldLocation Field = "location"
	FieldStatus   Field = "status"
)

// ListFilter es el predicado de listado. Campos vacíos/nil = sin filtro.
type ListFilter struct {
	Search   string // substring case-insensitive en name o breed
	Species  Species
	Breed    string // substring case-insensitive
	Gender   Gender
	Size     Size
	MinAge   *int
	MaxAge   *int
	Statuses []Status

	Skip  int
	Limit int // 0 = sin límite
}

// PhotoStore guarda los archivos de fotos y devuelve la URL pública.
type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
