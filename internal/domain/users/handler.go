package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"petverse/internal/domain/pets"
	"petverse/internal/middleware"
	"petverse/internal/platform/respond"
)

// PetLister evita depender del servicio completo de pets.
type PetLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]pets.Pet, error)
}

// RegisterAuthRoutes monta /auth/* (públicas).
func RegisterAuthRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc))
		ar.Post("/login", loginHandler(svc))
		ar.Post("/google/callback", googleCallbackHandler(svc))
	})
}

// RegisterRoutes monta /users/me/* (requieren middleware.RequireAuth).
func RegisterRoutes(r chi.Router, svc *Service, petLister PetLister) {
	r.Route("/users/me", func(ur chi.Router) {
		ur.Get("/", meHandler(svc, petLister))
		ur.Get("/settings", getSettingsHandler(svc))
		ur.Put("/settings", updateSettingsHandler(svc))
		ur.Get("/address", getAddressHandler(svc))
		ur.Put("/address", updateAddressHandler(svc))
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	IDToken string `json:"id_token"`
}

// UserSummary es el usuario embebido en la respuesta de auth.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        UserSummary `json:"user"`
}

type profileResponse struct {
	UserSummary
	Pets []pets.PetResponse `json:"pets"`
}

// registerHandler godoc
// @Summary Registro con email y contraseña
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "name (>=2), email, password (>=6)"
// @Success 201 {object} authResponse
// @Failure 400 {object} respond.DetailBody
// @Failure 409 {object} respond.DetailBody
// @Router /auth/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.Register(r.Context(), RegisterInput(req))
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusCreated, toAuthResponse(sess))
	}
}

// loginHandler godoc
// @Summary Login con email y contraseña
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} authResponse
// @Failure 401 {object} respond.DetailBody
// @Router /auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAuthResponse(sess))
	}
}

// googleCallbackHandler godoc
// @Summary Login con Google
// @Description Valida el id_token de Google y crea el usuario la primera vez.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body googleRequest true "id_token de Google"
// @Success 200 {object} authResponse
// @Failure 401 {object} respond.DetailBody
// @Failure 501 {object} respond.DetailBody
// @Router /auth/google/callback [post]
func googleCallbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req googleRequest
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}

		sess, err := svc.LoginWithGoogle(r.Context(), req.IDToken)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, toAuthResponse(sess))
	}
}

// meHandler godoc
// @Summary Perfil del usuario autenticado
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} profileResponse
// @Failure 401 {object} respond.DetailBody
// @Router /users/me [get]
func meHandler(svc *Service, petLister PetLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())

		u, err := svc.Me(r.Context(), uid)
		if errors.Is(err, ErrNotFound) {
			// token válido de un usuario que ya no existe
			respond.Detail(w, http.StatusUnauthorized, "User not found")
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		items, err := petLister.ListByOwner(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		out := profileResponse{UserSummary: toSummary(u), Pets: make([]pets.PetResponse, 0, len(items))}
		for _, p := range items {
			out.Pets = append(out.Pets, pets.ToResponse(p))
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getSettingsHandler godoc
// @Summary Preferencias del usuario
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Settings
// @Router /users/me/settings [get]
func getSettingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		s, err := svc.Settings(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, s)
	}
}

// updateSettingsHandler godoc
// @Summary Actualizar preferencias
// @Description Solo se modifican los campos enviados.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body Settings true "Preferencias"
// @Success 200 {object} Settings
// @Router /users/me/settings [put]
func updateSettingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())

		var patch Settings
		if err := respond.DecodeJSON(r, &patch); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}
		s, err := svc.UpdateSettings(r.Context(), uid, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, s)
	}
}

// getAddressHandler godoc
// @Summary Dirección del usuario
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Address
// @Router /users/me/address [get]
func getAddressHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())
		a, err := svc.Address(r.Context(), uid)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, a)
	}
}

// updateAddressHandler godoc
// @Summary Actualizar dirección
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body Address true "Dirección"
// @Success 200 {object} Address
// @Failure 400 {object} respond.DetailBody
// @Router /users/me/address [put]
func updateAddressHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := middleware.UserID(r.Context())

		var patch Address
		if err := respond.DecodeJSON(r, &patch); err != nil {
			respond.Detail(w, http.StatusBadRequest, "invalid json")
			return
		}
		a, err := svc.UpdateAddress(r.Context(), uid, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, a)
	}
}

func toSummary(u User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func toAuthResponse(s Session) authResponse {
	return authResponse{
		AccessToken: s.AccessToken,
		TokenType:   s.TokenType,
		User:        toSummary(s.User),
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Detail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrEmailTaken):
		respond.Detail(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		respond.Detail(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrIdentityRejected):
		respond.Detail(w, http.StatusUnauthorized, "Invalid Google token")
	case errors.Is(err, ErrGoogleDisabled):
		respond.Detail(w, http.StatusNotImplemented, "Google sign-in not configured")
	case errors.Is(err, ErrNotFound):
		respond.Detail(w, http.StatusNotFound, "User not found")
	default:
		respond.Detail(w, http.StatusInternalServerError, "internal error")
	}
}
