package users

import "pet-adoption/internal/platform/apierr"

var (
	ErrNotFound           = apierr.NotFound("User not found")
	ErrUserExists         = apierr.BadRequest("User already exists")
	ErrInvalidCredentials = apierr.Unauthorized("Invalid credentials")
	ErrUnauthenticated    = apierr.Unauthorized("Not authorized to access this route")
)
