package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"petverse/internal/platform/httpclient"
	"petverse/internal/ports/auth"
)

const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

var (
	ErrGoogleNotConfigured = errors.New("google sign-in not configured")
	ErrGoogleUnauthorized  = errors.New("google id token rejected")
	ErrGoogleUpstream      = errors.New("google upstream error")
)

// Config del cliente de tokeninfo.
// ClientIDs son las audiencias aceptadas (el client id de cada app: android, ios, web).
type Config struct {
	TokenInfoURL string
	ClientIDs    []string
	Timeout      time.Duration
}

type Client struct {
	tokenInfoURL string
	audiences    map[string]struct{}
	http         *httpclient.Client
}

func NewClient(cfg Config) *Client {
	u := strings.TrimSpace(cfg.TokenInfoURL)
	if u == "" {
		u = DefaultTokenInfoURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	aud := make(map[string]struct{}, len(cfg.ClientIDs))
	for _, id := range cfg.ClientIDs {
		if id = strings.TrimSpace(id); id != "" {
			aud[id] = struct{}{}
		}
	}

	// sin logger: la URL lleva el id_token en la query
	return &Client{
		tokenInfoURL: u,
		audiences:    aud,
		http:         httpclient.New(timeout),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.tokenInfoURL != "" && len(c.audiences) > 0
}

// TokenInfo valida el id_token contra el endpoint tokeninfo de Google.
// tokeninfo devuelve algunos booleanos como string ("true"); se leen con gjson.
func (c *Client) TokenInfo(ctx context.Context, idToken string) (auth.Identity, error) {
	if !c.IsConfigured() {
		return auth.Identity{}, ErrGoogleNotConfigured
	}
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return auth.Identity{}, ErrGoogleUnauthorized
	}

	var raw json.RawMessage
	err := c.http.DoJSON(ctx, httpclient.Request{
		Path:   c.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken),
		Method: http.MethodGet,
	}, &raw)
	if err != nil {
		if apiErr, ok := httpclient.AsAPIError(err); ok {
			if apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnauthorized {
				return auth.Identity{}, ErrGoogleUnauthorized
			}
		}
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrGoogleUpstream, err)
	}

	aud := gjson.GetBytes(raw, "aud").String()
	if _, ok := c.audiences[aud]; !ok {
		return auth.Identity{}, fmt.Errorf("%w: unexpected audience", ErrGoogleUnauthorized)
	}

	return auth.Identity{
		Subject:       gjson.GetBytes(raw, "sub").String(),
		Email:         strings.ToLower(strings.TrimSpace(gjson.GetBytes(raw, "email").String())),
		EmailVerified: gjson.GetBytes(raw, "email_verified").Bool(),
		Name:          strings.TrimSpace(gjson.GetBytes(raw, "name").String()),
	}, nil
}
