// Package auth arma los requests de login/registro contra /auth/*.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"petverse/internal/client/users"
	"petverse/internal/platform/httpclient"
	"petverse/internal/tokenstore"
)

const (
	EndpointGoogleCallback = "/auth/google/callback"
	EndpointRegister       = "/auth/register"
	EndpointLogin          = "/auth/login"
)

var ErrMissingAccessToken = errors.New("auth response without access_token")

type GooglePayload struct {
	IDToken string `json:"id_token"`
}

type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EmailLoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response es la respuesta común de los tres endpoints. User puede faltar.
type Response struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        *users.Summary `json:"user,omitempty"`
}

func (r Response) Validate() error {
	if strings.TrimSpace(r.AccessToken) == "" {
		return ErrMissingAccessToken
	}
	return nil
}

func (r Response) Credentials() tokenstore.Credentials {
	return tokenstore.Credentials{AccessToken: r.AccessToken, TokenType: r.TokenType}
}

type Client struct {
	http *httpclient.Client
}

func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

// Authenticate hace POST a path (sin bearer) y valida la respuesta.
func (c *Client) Authenticate(ctx context.Context, path string, payload any) (Response, error) {
	resp, err := httpclient.Do[Response](ctx, c.http, httpclient.Request{
		Path:   path,
		Method: http.MethodPost,
		Body:   payload,
	})
	if err != nil {
		return Response{}, err
	}
	if err := resp.Validate(); err != nil {
		return Response{}, err
	}
	return resp, nil
}
