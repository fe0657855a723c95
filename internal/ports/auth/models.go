package auth

// Claims representa la información extraída del access token.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

// Identity es lo que devuelve un proveedor externo (Google) tras validar un id_token.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}
