package session

import (
	"context"

	"petverse/internal/client/users"
)

type RestoreStatus int

const (
	// RestoreAnonymous: no hay token guardado (estado normal de "sin sesión").
	RestoreAnonymous RestoreStatus = iota
	RestoreAuthenticated
	// RestoreRejected: había token pero el perfil no se pudo cargar. Cause dice por qué.
	RestoreRejected
)

func (s RestoreStatus) String() string {
	switch s {
	case RestoreAuthenticated:
		return "authenticated"
	case RestoreRejected:
		return "rejected"
	default:
		return "anonymous"
	}
}

// RestoreResult nunca se acompaña de un error: los fallos quedan en Cause.
type RestoreResult struct {
	Status  RestoreStatus
	Profile *users.Profile
	Cause   error
}

func (r RestoreResult) Authenticated() bool {
	return r.Status == RestoreAuthenticated && r.Profile != nil
}

// RestoreProfile carga el perfil con el token guardado.
// No borra el token rechazado; eso lo decide el llamador (p.ej. con Logout).
func (s *Service) RestoreProfile(ctx context.Context) RestoreResult {
	creds, ok, err := s.tokens.Get(ctx)
	if err != nil {
		s.log.Warn("restore: read credentials failed", map[string]any{"error": err.Error()})
		return RestoreResult{Status: RestoreAnonymous, Cause: err}
	}
	if !ok {
		return RestoreResult{Status: RestoreAnonymous}
	}

	profile, err := s.users.FetchMyProfile(ctx, creds.AccessToken)
	if err != nil {
		s.log.Info("restore: stored credentials rejected", map[string]any{"error": err.Error()})
		return RestoreResult{Status: RestoreRejected, Cause: err}
	}
	return RestoreResult{Status: RestoreAuthenticated, Profile: &profile}
}
