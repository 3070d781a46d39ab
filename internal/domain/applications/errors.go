package applications

import "pet-adoption/internal/platform/apierr"

const CascadeRejectionNotes = "Pet adopted by another applicant"

var (
	ErrNotFound             = apierr.NotFound("Application not found")
	ErrPetNotAvailable      = apierr.BadRequest("This pet is not available for adoption")
	ErrDuplicateApplication = apierr.BadRequest("You have already applied for this pet")
	ErrInvalidReviewStatus  = apierr.BadRequest("Invalid status. Must be one of: Approved, Rejected")
	ErrAlreadyReviewed      = apierr.BadRequest("Application has already been reviewed")
	ErrOnlyPendingDeletable = apierr.BadRequest("Can only delete pending applications")

	ErrUnauthenticated = apierr.Unauthorized("Not authorized to access this route")
	ErrReviewForbidden = apierr.Forbidden("Only admins can update application status")
	ErrViewForbidden   = apierr.Forbidden("Not authorized to view this application")
	ErrDeleteForbidden = apierr.Forbidden("Not authorized to delete this application")
	ErrSubmitForbidden = apierr.Forbidden("Not authorized to submit applications")
	ErrStatsForbidden  = apierr.Forbidden("Only admins can view application statistics")
)
