package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/ports/auth"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

var userConstraints = map[string]error{
	"users_email_key": users.ErrUserExists,
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO users (
			id, name, email, password_hash, role,
			phone, address, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		u.ID,
		u.Name,
		strings.ToLower(u.Email),
		u.PasswordHash,
		string(u.Role),
		u.Phone,
		u.Address,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return mapUniqueViolation(err, userConstraints)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

// Update no toca email ni rol.
func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE users
		SET name = $2, phone = $3, address = $4, updated_at = $5
		WHERE id = $1
	`, u.ID, u.Name, u.Phone, u.Address, u.UpdatedAt)
	if err != nil {
		return err
	}
	return expectOne(res, users.ErrNotFound)
}

func (r *UsersRepo) getOne(ctx context.Context, where string, arg string) (users.User, error) {
	if arg == "" {
		return users.User{}, users.ErrNotFound
	}

	row := conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, phone, address, created_at, updated_at
		FROM users
		`+where, arg)

	var (
		u    users.User
		role string
	)
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.Phone,
		&u.Address,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, err
	}

	u.Role = auth.Role(role)
	return u, nil
}
