// Package session compone login/registro, persistencia del token y carga del perfil.
package session

import (
	"context"
	"fmt"

	"petverse/internal/client/auth"
	"petverse/internal/client/users"
	"petverse/internal/platform/httpclient"
	"petverse/internal/platform/logger"
	"petverse/internal/tokenstore"
)

// State de un intento de sesión. Solo se usa para logs.
type State string

const (
	StateIdle           State = "idle"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateFailed         State = "failed"
)

// Session es el resultado de un login exitoso. Solo Credentials se persiste.
type Session struct {
	Credentials tokenstore.Credentials
	User        *users.Summary
	Profile     users.Profile
}

type Service struct {
	auth   *auth.Client
	users  *users.Client
	tokens *tokenstore.Store
	log    logger.Logger
}

func New(c *httpclient.Client, tokens *tokenstore.Store, log logger.Logger) *Service {
	return &Service{
		auth:   auth.NewClient(c),
		users:  users.NewClient(c),
		tokens: tokens,
		log:    logger.OrNop(log).With(map[string]any{"component": "session"}),
	}
}

// Authenticate: POST al endpoint, guarda el token y recién después pide el perfil.
// Si el perfil falla, falla todo; el token queda guardado.
func (s *Service) Authenticate(ctx context.Context, path string, payload any) (Session, error) {
	s.transition(StateIdle, StateAuthenticating, path, nil)

	resp, err := s.auth.Authenticate(ctx, path, payload)
	if err != nil {
		s.transition(StateAuthenticating, StateFailed, path, err)
		return Session{}, err
	}

	creds := resp.Credentials()
	if err := s.tokens.Save(ctx, creds); err != nil {
		s.transition(StateAuthenticating, StateFailed, path, err)
		return Session{}, fmt.Errorf("session: persist credentials: %w", err)
	}

	profile, err := s.users.FetchMyProfile(ctx, creds.AccessToken)
	if err != nil {
		s.transition(StateAuthenticating, StateFailed, path, err)
		return Session{}, err
	}

	s.transition(StateAuthenticating, StateAuthenticated, path, nil)
	return Session{Credentials: creds, User: resp.User, Profile: profile}, nil
}

func (s *Service) LoginWithGoogleIDToken(ctx context.Context, idToken string) (Session, error) {
	return s.Authenticate(ctx, auth.EndpointGoogleCallback, auth.GooglePayload{IDToken: idToken})
}

func (s *Service) RegisterWithEmail(ctx context.Context, p auth.RegisterPayload) (Session, error) {
	return s.Authenticate(ctx, auth.EndpointRegister, p)
}

func (s *Service) LoginWithEmail(ctx context.Context, p auth.EmailLoginPayload) (Session, error) {
	return s.Authenticate(ctx, auth.EndpointLogin, p)
}

// Logout solo borra el token local; no hay revocación en el backend.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("session: clear credentials: %w", err)
	}
	s.log.Info("session closed", nil)
	return nil
}

// Credentials devuelve el token guardado, si hay.
func (s *Service) Credentials(ctx context.Context) (tokenstore.Credentials, bool, error) {
	return s.tokens.Get(ctx)
}

func (s *Service) transition(from, to State, path string, err error) {
	fields := map[string]any{"from": string(from), "to": string(to), "endpoint": path}
	if err != nil {
		fields["error"] = err.Error()
		if apiErr, ok := httpclient.AsAPIError(err); ok {
			fields["status"] = apiErr.Status
		}
		s.log.Warn("session state", fields)
		return
	}
	s.log.Debug("session state", fields)
}
