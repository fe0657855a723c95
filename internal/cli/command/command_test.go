package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"petverse/internal/adapters/auth/jwtauth"
	domain "petverse/internal/domain/records"
	"petverse/internal/router"
)

type cliHarness struct {
	t   *testing.T
	url string
	dir string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("PETVERSE_API_URL", "")

	tokens, err := jwtauth.New(jwtauth.Config{Secret: "cli-test-secret"})
	if err != nil {
		t.Fatalf("jwtauth.New() error: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(router.Options{Tokens: tokens, MediaDir: t.TempDir()}))
	t.Cleanup(ts.Close)

	return &cliHarness{t: t, url: ts.URL, dir: t.TempDir()}
}

// run ejecuta la app con el backend badger en un dir del test, como haría un usuario.
func (h *cliHarness) run(store string, args ...string) (string, error) {
	h.t.Helper()

	app := App()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	base := []string{
		"petverse",
		"--config", filepath.Join(h.dir, "missing.yaml"),
		"--api-url", h.url,
		"--store", store,
		"--badger-dir", filepath.Join(h.dir, "secure"),
	}
	err := app.RunContext(context.Background(), append(base, args...))
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("badger", args...)
	if err != nil {
		h.t.Fatalf("petverse %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	return v
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

func TestCLI_SessionPetsRecordsFlow(t *testing.T) {
	h := newCLIHarness(t)

	reg := decode[map[string]any](t, h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1"))
	if reg["token_type"] != "bearer" {
		t.Fatalf("unexpected register output %v", reg)
	}

	who := decode[whoamiOutput](t, h.mustRun("whoami"))
	if who.Status != "authenticated" || who.Profile == nil || who.Profile.Email != "ana@example.com" {
		t.Fatalf("unexpected whoami %+v", who)
	}

	pet := decode[map[string]any](t, h.mustRun("pets", "create", "--name", "Luna", "--species", "cat", "--weight", "3.5"))
	petID := int64(pet["id"].(float64))
	if petID <= 0 || pet["name"] != "Luna" {
		t.Fatalf("unexpected pet %v", pet)
	}

	updated := decode[map[string]any](t, h.mustRun("pets", "update", "--id", itoa(petID), "--breed", "siamese"))
	if updated["breed"] != "siamese" || updated["name"] != "Luna" {
		t.Fatalf("unexpected update %v", updated)
	}

	list := decode[[]map[string]any](t, h.mustRun("pets", "list"))
	if len(list) != 1 {
		t.Fatalf("expected 1 pet, got %v", list)
	}

	rec := decode[map[string]any](t, h.mustRun("records", "add", "--pet", itoa(petID), "--kind", "weights",
		"--field", "date=2026-01-02", "--field", "weight=4.25"))
	recID := int64(rec["id"].(float64))
	if rec["weight"] != 4.25 || rec["date"] != "2026-01-02" {
		t.Fatalf("unexpected record %v", rec)
	}

	rec = decode[map[string]any](t, h.mustRun("records", "update", "--pet", itoa(petID), "--kind", "weights",
		"--id", itoa(recID), "--field", "weight=4.5"))
	if rec["weight"] != 4.5 || rec["date"] != "2026-01-02" {
		t.Fatalf("expected merged update, got %v", rec)
	}

	recs := decode[[]map[string]any](t, h.mustRun("records", "list", "--pet", itoa(petID), "--kind", "weights"))
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %v", recs)
	}

	settings := decode[map[string]any](t, h.mustRun("settings", "set", "--language", "es", "--notifications=false"))
	if settings["language"] != "es" || settings["notifications_enabled"] != false {
		t.Fatalf("unexpected settings %v", settings)
	}

	h.mustRun("records", "delete", "--pet", itoa(petID), "--kind", "weights", "--id", itoa(recID))
	h.mustRun("pets", "delete", "--id", itoa(petID))

	h.mustRun("logout")
	who = decode[whoamiOutput](t, h.mustRun("whoami"))
	if who.Status != "anonymous" {
		t.Fatalf("expected anonymous after logout, got %+v", who)
	}

	if _, err := h.run("badger", "pets", "list"); exitCode(err) != exitAuth {
		t.Fatalf("expected exit %d without session, got %v", exitAuth, err)
	}
}

func TestCLI_UploadImage(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	pet := decode[map[string]any](t, h.mustRun("pets", "create", "--name", "Luna", "--species", "cat"))

	img := filepath.Join(t.TempDir(), "luna.png")
	if err := os.WriteFile(img, []byte("\x89PNG fake"), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}

	out := decode[map[string]string](t, h.mustRun("pets", "upload-image", "--id", itoa(int64(pet["id"].(float64))), "--file", img))
	if !strings.HasPrefix(out["url"], "/media/pets/") || !strings.HasSuffix(out["url"], ".png") {
		t.Fatalf("unexpected url %q", out["url"])
	}
}

func TestCLI_LoginErrors(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")

	_, err := h.run("badger", "login", "--email", "ana@example.com", "--password", "wrong")
	if exitCode(err) != exitAuth || !strings.Contains(err.Error(), "Invalid email or password") {
		t.Fatalf("expected auth failure, got %v", err)
	}

	_, err = h.run("badger", "register", "--name", "Ana", "--email", "ANA@example.com", "--password", "secret1")
	if exitCode(err) != exitFailure || !strings.Contains(err.Error(), "status 409") {
		t.Fatalf("expected 409 failure, got %v", err)
	}

	// sin verificador de Google el backend responde 501
	if _, err = h.run("badger", "login-google", "--id-token", "x"); exitCode(err) != exitFailure {
		t.Fatalf("expected failure, got %v", err)
	}
}

func TestCLI_TamperedTokenRejected(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")

	// otro backend con otro secreto: el token guardado deja de valer
	other := newCLIHarness(t)
	other.dir = h.dir

	out, err := other.run("badger", "whoami")
	if exitCode(err) != exitAuth {
		t.Fatalf("expected exit %d, got %v", exitAuth, err)
	}
	who := decode[whoamiOutput](t, out)
	if who.Status != "rejected" || who.Reason == "" {
		t.Fatalf("unexpected whoami %+v", who)
	}
}

func TestCLI_MemoryStoreDoesNotPersist(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run("memory", "register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1"); err != nil {
		t.Fatalf("register error: %v", err)
	}
	out, err := h.run("memory", "whoami")
	if err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	if who := decode[whoamiOutput](t, out); who.Status != "anonymous" {
		t.Fatalf("expected anonymous with memory store, got %+v", who)
	}
}

func TestCLI_MetricsFile(t *testing.T) {
	h := newCLIHarness(t)
	path := filepath.Join(t.TempDir(), "client.prom")

	if _, err := h.run("badger", "--metrics-file", path, "whoami"); err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	// sin sesión no hay requests, pero el archivo se escribe igual
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected metrics file: %v", err)
	}

	h.mustRun("register", "--name", "Ana", "--email", "ana@example.com", "--password", "secret1")
	if _, err := h.run("badger", "--metrics-file", path, "whoami"); err != nil {
		t.Fatalf("whoami error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(raw), `petverse_client_requests_total{method="GET",path="/users/me",status="200"} 1`) {
		t.Fatalf("unexpected metrics:\n%s", raw)
	}
}

func TestCLI_InvalidStoreBackend(t *testing.T) {
	h := newCLIHarness(t)
	if _, err := h.run("sqlite", "whoami"); exitCode(err) != exitUsage {
		t.Fatalf("expected exit %d, got %v", exitUsage, err)
	}
}

func TestParseFields(t *testing.T) {
	got, err := parseFields("medical-visits", []string{"vet_id=7", "diagnosis=otitis, mild", "visit_date=2026-03-01"})
	if err != nil {
		t.Fatalf("parseFields() error: %v", err)
	}
	if got["vet_id"] != int64(7) || got["diagnosis"] != "otitis, mild" || got["visit_date"] != "2026-03-01" {
		t.Fatalf("unexpected fields %#v", got)
	}

	if _, err := parseFields("medical-visits", []string{"vet_id"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing '=', got %v", err)
	}
	if _, err := parseFields("grooming", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
