package tokenstore

import (
	"encoding/json"
	"strings"
)

// Credentials es el par que devuelve el backend al autenticar.
// El orden de los campos define el orden en el JSON persistido.
type Credentials struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c Credentials) IsZero() bool {
	return strings.TrimSpace(c.AccessToken) == ""
}

// AuthorizationHeader arma el valor del header; token_type vacío cae en "Bearer".
func (c Credentials) AuthorizationHeader() string {
	tt := strings.TrimSpace(c.TokenType)
	if tt == "" || strings.EqualFold(tt, "bearer") {
		tt = "Bearer"
	}
	return tt + " " + c.AccessToken
}

func encode(c Credentials) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decode devuelve ok=false si el valor guardado está vacío, es corrupto o no trae access token
// (`null`, `{}`, `{"access_token":""}`).
func decode(s string) (Credentials, bool) {
	if strings.TrimSpace(s) == "" {
		return Credentials{}, false
	}
	var c Credentials
	if err := json.Unmarshal([]byte(s), &c); err != nil || c.IsZero() {
		return Credentials{}, false
	}
	return c, true
}
