package users

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/httpresp"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/ratelimiter"
	"pet-adoption/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes: register y login van detrás del rate limit por IP.
func RegisterRoutes(r chi.Router, svc *Service, limiter *ratelimiter.KeyLimiter, log logger.Logger) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Group(func(pub chi.Router) {
			pub.Use(middleware.RateLimit(limiter))
			pub.Post("/register", registerHandler(svc, log))
			pub.Post("/login", loginHandler(svc, log))
		})

		ar.Get("/me", meHandler(svc, log))
		ar.Put("/profile", updateProfileHandler(svc, log))
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// userResponse nunca expone el hash.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Token     string    `json:"token,omitempty"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea una cuenta con rol `user` y devuelve el token de acceso.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de la cuenta"
// @Success 201 {object} httpresp.Envelope{data=userResponse}
// @Failure 400 {object} httpresp.ErrorEnvelope "El usuario ya existe"
// @Failure 422 {object} httpresp.ErrorEnvelope
// @Failure 429 {object} httpresp.ErrorEnvelope
// @Router /auth/register [post]
func registerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.Register(r.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
			Address:  req.Address,
		})
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Created(w, "User registered successfully", toUserResponse(sess.User, sess.Token))
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} httpresp.Envelope{data=userResponse}
// @Failure 401 {object} httpresp.ErrorEnvelope "Credenciales inválidas"
// @Failure 422 {object} httpresp.ErrorEnvelope
// @Failure 429 {object} httpresp.ErrorEnvelope
// @Router /auth/login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Login successful", toUserResponse(sess.User, sess.Token))
	}
}

// meHandler godoc
// @Summary Usuario actual
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Success 200 {object} httpresp.Envelope{data=userResponse}
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /auth/me [get]
func meHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, ErrUnauthenticated)
			return
		}

		u, err := svc.Profile(r.Context(), actor.ID)
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "User retrieved successfully", toUserResponse(u, ""))
	}
}

// updateProfileHandler godoc
// @Summary Editar perfil
// @Description Solo nombre, teléfono y dirección. Email y rol no se editan.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body updateProfileRequest true "Campos a modificar"
// @Success 200 {object} httpresp.Envelope{data=userResponse}
// @Failure 401 {object} httpresp.ErrorEnvelope
// @Failure 404 {object} httpresp.ErrorEnvelope
// @Router /auth/profile [put]
func updateProfileHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := middleware.ActorFrom(r.Context())
		if !actor.Authenticated() {
			httpresp.Error(w, log, ErrUnauthenticated)
			return
		}

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpresp.Fail(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.UpdateProfile(r.Context(), actor.ID, UpdateProfileInput{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
		})
		if err != nil {
			httpresp.Error(w, log, err)
			return
		}
		httpresp.Success(w, http.StatusOK, "Profile updated successfully", toUserResponse(u, ""))
	}
}

func toUserResponse(u User, token string) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
		Token:     token,
	}
}
