// Package users envuelve los endpoints /users/me del backend.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"petverse/internal/client/pets"
	"petverse/internal/platform/httpclient"
)

const (
	PathMe       = "/users/me"
	PathSettings = "/users/me/settings"
	PathAddress  = "/users/me/address"
)

var (
	// ErrMissingToken: no se hace el request sin access token.
	ErrMissingToken = errors.New("missing access token")

	ErrInvalidProfile = errors.New("invalid profile payload")
)

// Summary viene en las respuestas de auth. Solo Email es obligatorio.
type Summary struct {
	ID    *int64  `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Email string  `json:"email"`
	Role  string  `json:"role,omitempty"`
}

// Profile es la respuesta de GET /users/me.
type Profile struct {
	Summary
	Pets []pets.Pet `json:"pets"`
}

// Validate revisa la forma mínima que la app necesita.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidProfile)
	}
	return nil
}

type Settings struct {
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	PrivacyLevel         *string `json:"privacy_level,omitempty"`
	Language             *string `json:"language,omitempty"`
	Timezone             *string `json:"timezone,omitempty"`
}

type Address struct {
	Country *string  `json:"country,omitempty"`
	City    *string  `json:"city,omitempty"`
	Address *string  `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

type Client struct {
	http *httpclient.Client
}

func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

func (c *Client) FetchMyProfile(ctx context.Context, token string) (Profile, error) {
	if strings.TrimSpace(token) == "" {
		return Profile{}, ErrMissingToken
	}

	p, err := httpclient.Do[Profile](ctx, c.http, httpclient.Request{
		Path:   PathMe,
		Method: http.MethodGet,
		Token:  token,
	})
	if err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	if p.Pets == nil {
		p.Pets = []pets.Pet{}
	}
	return p, nil
}

func (c *Client) Settings(ctx context.Context, token string) (Settings, error) {
	if strings.TrimSpace(token) == "" {
		return Settings{}, ErrMissingToken
	}
	return httpclient.Do[Settings](ctx, c.http, httpclient.Request{
		Path:  PathSettings,
		Token: token,
	})
}

// UpdateSettings es parcial: los campos nil no se envían.
func (c *Client) UpdateSettings(ctx context.Context, patch Settings, token string) (Settings, error) {
	if strings.TrimSpace(token) == "" {
		return Settings{}, ErrMissingToken
	}
	return httpclient.Do[Settings](ctx, c.http, httpclient.Request{
		Path:   PathSettings,
		Method: http.MethodPut,
		Body:   patch,
		Token:  token,
	})
}

func (c *Client) Address(ctx context.Context, token string) (Address, error) {
	if strings.TrimSpace(token) == "" {
		return Address{}, ErrMissingToken
	}
	return httpclient.Do[Address](ctx, c.http, httpclient.Request{
		Path:  PathAddress,
		Token: token,
	})
}

func (c *Client) UpdateAddress(ctx context.Context, patch Address, token string) (Address, error) {
	if strings.TrimSpace(token) == "" {
		return Address{}, ErrMissingToken
	}
	return httpclient.Do[Address](ctx, c.http, httpclient.Request{
		Path:   PathAddress,
		Method: http.MethodPut,
		Body:   patch,
		Token:  token,
	})
}
