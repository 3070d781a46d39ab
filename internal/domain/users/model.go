package users

import (
	"time"

	"pet-adoption/internal/ports/auth"
)

type User struct {
	ID           string
	Name         string
	Email        string // normalizado en minúsculas, único
	PasswordHash string
	Role         auth.Role
	Phone        string
	Address      string

	CreatedAt time.Time
	UpdatedAt time.Time
}
