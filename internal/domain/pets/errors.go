package pets

import "pet-adoption/internal/platform/apierr"

var (
	ErrNotFound      = apierr.NotFound("Pet not found")
	ErrInvalidStatus = apierr.BadRequest("Invalid status. Must be Available, Pending, or Adopted")
	ErrForbidden     = apierr.Forbidden("Not authorized to access this route")

	ErrNoPhotos         = apierr.BadRequest("Please upload at least one photo")
	ErrTooManyPhotos    = apierr.BadRequest("Too many files. Maximum is 10")
	ErrPhotoTooLarge    = apierr.BadRequest("File too large. Maximum size is 5MB")
	ErrPhotoInvalidType = apierr.BadRequest("Only image files are allowed (jpeg, jpg, png, gif, webp)")
)

var errPhotoStoreMissing = apierr.New(apierr.KindInternal, "photo storage not configured")
