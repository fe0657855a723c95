package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"petverse/internal/ports/auth"
)

var ErrEmailNotVerified = errors.New("google account email not verified")

// Verifier implementa auth.IdentityVerifier usando tokeninfo.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (auth.Identity, error) {
	if v == nil || v.client == nil {
		return auth.Identity{}, ErrGoogleNotConfigured
	}

	id, err := v.client.TokenInfo(ctx, idToken)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("google verify failed: %w", err)
	}

	if strings.TrimSpace(id.Email) == "" {
		return auth.Identity{}, fmt.Errorf("google verify failed: %w: missing email", ErrGoogleUnauthorized)
	}
	if !id.EmailVerified {
		return auth.Identity{}, ErrEmailNotVerified
	}
	return id, nil
}
