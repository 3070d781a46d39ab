package applications

import "time"

// Status de una solicitud. Approved y Rejected son terminales.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// IsReviewOutcome: solo Approved/Rejected son resultados válidos de una revisión.
func (s Status) IsReviewOutcome() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) Terminal() bool {
	return s.IsReviewOutcome()
}

type HousingType string

const (
	HousingHouse     HousingType = "House"
	HousingApartment HousingType = "Apartment"
	HousingCondo     HousingType = "Condo"
	HousingOther     HousingType = "Other"
)

// ApplicantInfo es lo que completa el solicitante en el formulario.
type ApplicantInfo struct {
	Phone           string
	Address         string
	HousingType     HousingType
	HasYard         bool
	HasPets         bool
	PetsDescription string
	Experience      string
	Reason          string
}

type Application struct {
	ID          string
	PetID       string
	ApplicantID string

	Info   ApplicantInfo
	Status Status

	// Campos de revisión: se setean solo al salir de Pending.
	// ReviewedBy queda vacío en los rechazos en cascada.
	ReviewedBy  string
	ReviewedAt  *time.Time
	ReviewNotes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
