package google

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func tokenInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("id_token") {
		case "good":
			_, _ = w.Write([]byte(`{"aud":"app-client","sub":"1001","email":"Ana@Example.com","email_verified":"true","name":"Ana"}`))
		case "unverified":
			_, _ = w.Write([]byte(`{"aud":"app-client","sub":"1002","email":"bob@example.com","email_verified":"false"}`))
		case "other-aud":
			_, _ = w.Write([]byte(`{"aud":"someone-else","sub":"1003","email":"eve@example.com","email_verified":true}`))
		case "boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestVerifier(t *testing.T) *Verifier {
	srv := tokenInfoServer(t)
	return NewVerifier(NewClient(Config{
		TokenInfoURL: srv.URL + "/tokeninfo",
		ClientIDs:    []string{"app-client"},
	}))
}

func TestVerifier_AcceptsVerifiedToken(t *testing.T) {
	id, err := newTestVerifier(t).VerifyIDToken(context.Background(), "good")
	if err != nil {
		t.Fatalf("VerifyIDToken() error: %v", err)
	}
	if id.Email != "ana@example.com" || id.Name != "Ana" || id.Subject != "1001" || !id.EmailVerified {
		t.Fatalf("unexpected identity %+v", id)
	}
}

func TestVerifier_Rejections(t *testing.T) {
	v := newTestVerifier(t)
	ctx := context.Background()

	cases := map[string]error{
		"unverified": ErrEmailNotVerified,
		"other-aud":  ErrGoogleUnauthorized,
		"garbage":    ErrGoogleUnauthorized,
		"":           ErrGoogleUnauthorized,
		"boom":       ErrGoogleUpstream,
	}
	for tok, want := range cases {
		if _, err := v.VerifyIDToken(ctx, tok); !errors.Is(err, want) {
			t.Fatalf("token %q: expected %v, got %v", tok, want, err)
		}
	}
}

func TestVerifier_NotConfigured(t *testing.T) {
	v := NewVerifier(NewClient(Config{}))
	if _, err := v.VerifyIDToken(context.Background(), "good"); !errors.Is(err, ErrGoogleNotConfigured) {
		t.Fatalf("expected ErrGoogleNotConfigured, got %v", err)
	}
}
