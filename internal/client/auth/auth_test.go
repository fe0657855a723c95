package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petverse/internal/platform/httpclient"
)

func TestAuthenticate_PostsPayloadWithoutBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != EndpointGoogleCallback {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("auth endpoints must not carry a bearer")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["id_token"] != "google-id-token" {
			t.Errorf("unexpected body %v", body)
		}
		_, _ = w.Write([]byte(`{"access_token":"jwt","token_type":"bearer","user":{"id":1,"email":"ana@example.com"}}`))
	}))
	defer srv.Close()

	hc, _ := httpclient.NewWithBaseURL(srv.URL, 2*time.Second)
	resp, err := NewClient(hc).Authenticate(context.Background(), EndpointGoogleCallback, GooglePayload{IDToken: "google-id-token"})
	if err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}
	if resp.User == nil || resp.User.Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
	creds := resp.Credentials()
	if creds.AccessToken != "jwt" || creds.TokenType != "bearer" {
		t.Fatalf("unexpected credentials %+v", creds)
	}
}

func TestAuthenticate_RequiresAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer srv.Close()

	hc, _ := httpclient.NewWithBaseURL(srv.URL, 2*time.Second)
	_, err := NewClient(hc).Authenticate(context.Background(), EndpointLogin, EmailLoginPayload{Email: "a@b.co", Password: "x"})
	if !errors.Is(err, ErrMissingAccessToken) {
		t.Fatalf("expected ErrMissingAccessToken, got %v", err)
	}
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Invalid email or password"}`))
	}))
	defer srv.Close()

	hc, _ := httpclient.NewWithBaseURL(srv.URL, 2*time.Second)
	_, err := NewClient(hc).Authenticate(context.Background(), EndpointLogin, EmailLoginPayload{Email: "a@b.co", Password: "x"})
	if !httpclient.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
}
