package auth

import "context"

// AuthVerifier verifica un access token y devuelve claims o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite el access token que el backend entrega al autenticar.
// TokenType es el valor de "token_type" en la respuesta (p.ej. "bearer").
type TokenIssuer interface {
	Issue(ctx context.Context, c Claims) (token string, err error)
	TokenType() string
}

// IdentityVerifier valida un id_token de un proveedor externo.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (Identity, error)
}
