package pets

import "time"

// Species define las especies soportadas.
// @Enum Dog, Cat, Bird, Rabbit, Other
type Species string

const (
	SpeciesDog    Species = "Dog"
	SpeciesCat    Species = "Cat"
	SpeciesBird   Species = "Bird"
	SpeciesRabbit Species = "Rabbit"
	SpeciesOther  Species = "Other"
)

var AllSpecies = []Species{SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRabbit, SpeciesOther}

// Gender define el sexo de la mascota.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type Size string

const (
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
)

// Status es la disponibilidad de la mascota. La mantiene sincronizada el
// workflow de solicitudes; un admin puede forzarla a mano.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusPending   Status = "Pending"
	StatusAdopted   Status = "Adopted"
)

var AllStatuses = []Status{StatusAvailable, StatusPending, StatusAdopted}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Pet representa una mascota publicada para adopción.
type Pet struct {
	ID string

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

	// Photos en orden de carga (URLs o paths públicos).
	Photos []string

	Status      Status
	AdoptionFee float64
	Location    string

	AddedBy string // admin que la publicó

	CreatedAt time.Time
	UpdatedAt time.Time
}
