package users

import "context"

type Repository interface {
	// Create devuelve ErrUserExists si el email ya está tomado.
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, u User) error
}
