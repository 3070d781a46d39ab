package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/validate"
	"pet-adoption/internal/ports/auth"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

// TokenIssuer emite la credencial opaca que después verifica auth.AuthVerifier.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
	log    logger.Logger
	cost   int
	now    func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		tokens: tokens,
		log:    log,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

// Session es un usuario recién autenticado junto con su token.
type Session struct {
	User  User
	Token string
}

// Register siempre crea rol user; el admin inicial sale de EnsureAdmin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	var v validate.Errors
	v.Required("name", in.Name, "Name is required")
	v.Email("email", in.Email, "Please provide a valid email")
	if len(in.Password) < minPasswordLen {
		v.Add("password", "Password must be at least 6 characters")
	}
	if err := v.Err(); err != nil {
		return Session{}, err
	}

	u, err := s.create(ctx, in, auth.RoleUser)
	if err != nil {
		return Session{}, err
	}
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)

	var v validate.Errors
	v.Email("email", email, "Please provide a valid email")
	v.Required("password", password, "Password is required")
	if err := v.Err(); err != nil {
		return Session{}, err
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrUnauthenticated
	}
	return s.repo.GetByID(ctx, id)
}

// UpdateProfileInput: nil o vacío = mantener el valor actual.
type UpdateProfileInput struct {
	Name    *string
	Phone   *string
	Address *string
}

func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (User, error) {
	u, err := s.Profile(ctx, id)
	if err != nil {
		return User{}, err
	}

	if v := trimmed(in.Name); v != "" {
		u.Name = v
	}
	if v := trimmed(in.Phone); v != "" {
		u.Phone = v
	}
	if v := trimmed(in.Address); v != "" {
		u.Address = v
	}
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Contact lo usa el listado de solicitudes para mostrar al solicitante.
func (s *Service) Contact(ctx context.Context, userID string) (string, string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return u.Name, u.Email, nil
}

// EnsureAdmin crea el admin inicial si el email no existe. Es idempotente.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, errors.New("admin email and password are required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != auth.RoleAdmin {
			s.log.Warn("bootstrap admin email belongs to a non-admin user", map[string]any{"user_id": existing.ID})
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	if strings.TrimSpace(name) == "" {
		name = "Admin"
	}
	u, err := s.create(ctx, RegisterInput{Name: name, Email: email, Password: password}, auth.RoleAdmin)
	if err != nil {
		return User{}, err
	}
	s.log.Info("bootstrap admin created", map[string]any{"user_id": u.ID})
	return u, nil
}

func (s *Service) create(ctx context.Context, in RegisterInput, role auth.Role) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return User{}, ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// session sin issuer (modo dev) devuelve el usuario sin token.
func (s *Service) session(u User) (Session, error) {
	if s.tokens == nil {
		return Session{User: u}, nil
	}
	token, err := s.tokens.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: token}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
