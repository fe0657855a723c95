package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestResolveURL(t *testing.T) {
	c, err := NewWithBaseURL("http://host/", 0)
	if err != nil {
		t.Fatalf("NewWithBaseURL: %v", err)
	}

	cases := map[string]string{
		"pets":           "http://host/pets",
		"/pets":          "http://host/pets",
		"http://other/x": "http://other/x",
		"https://x/y?z=": "https://x/y?z=",
	}
	for in, want := range cases {
		got, err := c.ResolveURL(in)
		if err != nil {
			t.Fatalf("resolve %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("resolve %q: expected %q, got %q", in, want, got)
		}
	}
}

func TestResolveURL_RelativeWithoutBase(t *testing.T) {
	c := New(0)
	if _, err := c.ResolveURL("/pets"); !errors.Is(err, ErrNoBaseURL) {
		t.Fatalf("expected ErrNoBaseURL, got %v", err)
	}
}

func TestDoJSON_HeadersAndBody(t *testing.T) {
	var got *http.Request
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"name":"Max"}`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	err := c.DoJSON(context.Background(), Request{
		Path:    "pets",
		Method:  http.MethodPost,
		Body:    map[string]string{"name": "Max"},
		Token:   "tok-1",
		Headers: map[string]string{"X-Client": "cli", "accept": "application/vnd.petverse+json"},
	}, &out)
	if err != nil {
		t.Fatalf("DoJSON: %v", err)
	}

	if out.ID != 7 || out.Name != "Max" {
		t.Fatalf("unexpected decoded body: %+v", out)
	}
	if got.Method != http.MethodPost || got.URL.Path != "/pets" {
		t.Fatalf("unexpected request line %s %s", got.Method, got.URL.Path)
	}
	if got.Header.Get("Authorization") != "Bearer tok-1" {
		t.Fatalf("missing bearer, got %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content-type %q", got.Header.Get("Content-Type"))
	}
	// override explícito del caller gana
	if got.Header.Get("Accept") != "application/vnd.petverse+json" {
		t.Fatalf("expected caller Accept override, got %q", got.Header.Get("Accept"))
	}
	if got.Header.Get("X-Client") != "cli" {
		t.Fatalf("missing caller header")
	}
	if gotBody != `{"name":"Max"}` {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestDoJSON_NoBodyNoToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			t.Errorf("expected no body, got length %d", r.ContentLength)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no Authorization header")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	var out map[string]any
	if err := c.DoJSON(context.Background(), Request{Path: "/pets/1", Method: http.MethodDelete}, &out); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if out != nil {
		t.Fatalf("expected zero value for empty body, got %v", out)
	}
}

func TestDoJSON_NotFoundUsesDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Pet not found"}`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	err := c.DoJSON(context.Background(), Request{Path: "/pets/99"}, nil)

	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %T %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "Pet not found" {
		t.Fatalf("expected detail message, got %q", apiErr.Message)
	}
	want := map[string]any{"detail": "Pet not found"}
	if !reflect.DeepEqual(apiErr.Payload, want) {
		t.Fatalf("expected payload %v, got %#v", want, apiErr.Payload)
	}
}

func TestDoJSON_ErrorWithoutDetail(t *testing.T) {
	bodies := []string{"", "<html>oops</html>", `{"detail":[{"msg":"field required"}]}`}
	for _, body := range bodies {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(body))
		}))

		c, _ := NewWithBaseURL(ts.URL, time.Second)
		err := c.DoJSON(context.Background(), Request{Path: "/auth/login", Method: http.MethodPost}, nil)
		ts.Close()

		apiErr, ok := AsAPIError(err)
		if !ok || apiErr.Status != http.StatusUnprocessableEntity {
			t.Fatalf("body %q: expected 422 APIError, got %v", body, err)
		}
		if apiErr.Message != MessageRequestFailed {
			t.Fatalf("body %q: expected generic message, got %q", body, apiErr.Message)
		}
		if strings.HasPrefix(body, "{") == (apiErr.Payload == nil) {
			t.Fatalf("body %q: unexpected payload %#v", body, apiErr.Payload)
		}
	}
}

func TestDoJSON_UnparseableSuccessBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	out := struct{ Name string }{}
	if err := c.DoJSON(context.Background(), Request{Path: "/health"}, &out); err != nil {
		t.Fatalf("expected nil error for non-json 2xx, got %v", err)
	}
	if out.Name != "" {
		t.Fatalf("expected zero value, got %+v", out)
	}
}

func TestDoJSON_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, 50*time.Millisecond)
	err := c.DoJSON(context.Background(), Request{Path: "/slow"}, nil)

	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusRequestTimeout || apiErr.Message != MessageTimeout {
		t.Fatalf("expected 408 timeout, got %d %q", apiErr.Status, apiErr.Message)
	}
	if !IsTimeout(err) || !apiErr.Timeout() {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestDoJSON_CallerDeadlineTakesPrecedence(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, 20*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.DoJSON(ctx, Request{Path: "/slow"}, nil); err != nil {
		t.Fatalf("caller deadline should override default timeout, got %v", err)
	}
}

func TestDoJSON_CallerCancelIsTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.DoJSON(ctx, Request{Path: "/x"}, nil)
	if !IsTimeout(err) {
		t.Fatalf("expected 408 for cancelled context, got %v", err)
	}
}

func TestDoJSON_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := ts.URL
	ts.Close()

	c, _ := NewWithBaseURL(base, time.Second)
	err := c.DoJSON(context.Background(), Request{Path: "/pets"}, nil)

	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", apiErr.Status)
	}
	if apiErr.Message == "" || apiErr.Unwrap() == nil {
		t.Fatalf("expected underlying cause in message, got %+v", apiErr)
	}
}

func TestDoJSON_ShapeMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[1,2,3]`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	var out struct{ ID int }
	err := c.DoJSON(context.Background(), Request{Path: "/users/me"}, &out)
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Status != http.StatusOK || apiErr.Message != MessageInvalidPayload {
		t.Fatalf("expected invalid payload error, got %v", err)
	}
}

func TestDo_Generic(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	items, err := Do[[]struct {
		ID int `json:"id"`
	}](context.Background(), c, Request{Path: "/pets"})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(items) != 2 || items[1].ID != 2 {
		t.Fatalf("unexpected items %+v", items)
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []int
}

func (o *recordingObserver) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func TestDoMultipart(t *testing.T) {
	obs := &recordingObserver{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pet_id") != "3" {
			t.Errorf("expected pet_id query, got %q", r.URL.RawQuery)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer")
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "pet_3.jpg" || string(b) != "JPEGDATA" {
			t.Errorf("unexpected upload %q %q", hdr.Filename, string(b))
		}
		_, _ = w.Write([]byte(`{"avatar_url":"/media/pets/3.jpg"}`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	c.Observer = obs

	var out struct {
		AvatarURL string `json:"avatar_url"`
	}
	err := c.DoMultipart(context.Background(), MultipartRequest{
		Path:        "/pets/upload-image?pet_id=3",
		Token:       "tok",
		FileName:    "pet_3.jpg",
		ContentType: "image/jpeg",
		File:        strings.NewReader("JPEGDATA"),
	}, &out)
	if err != nil {
		t.Fatalf("DoMultipart: %v", err)
	}
	if out.AvatarURL != "/media/pets/3.jpg" {
		t.Fatalf("unexpected response %+v", out)
	}
	if len(obs.statuses) != 1 || obs.statuses[0] != http.StatusOK {
		t.Fatalf("expected one observed 200, got %v", obs.statuses)
	}
}

func TestDoJSON_ResponseTooLarge(t *testing.T) {
	obs := &recordingObserver{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := "[" + strings.Repeat(`"xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",`, maxResponseBytes/34+1) + `"x"]`
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, 5*time.Second)
	c.Observer = obs

	var out []string
	err := c.DoJSON(context.Background(), Request{Path: "/pets"}, &out)
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Message != MessageResponseTooLarge {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if len(out) != 0 {
		t.Fatalf("truncated body must not be decoded, got %d items", len(out))
	}
	if len(obs.statuses) != 1 || obs.statuses[0] != http.StatusOK {
		t.Fatalf("expected one observed 200, got %v", obs.statuses)
	}
}

func TestReadAtMost_ExactLimit(t *testing.T) {
	b, err := readAtMost(strings.NewReader("abcd"), 4)
	if err != nil || string(b) != "abcd" {
		t.Fatalf("expected full body at the limit, got %q %v", b, err)
	}
	if _, err := readAtMost(strings.NewReader("abcde"), 4); !errors.Is(err, errResponseTooLarge) {
		t.Fatalf("expected errResponseTooLarge, got %v", err)
	}
}

func TestDoMultipart_EscapesFileName(t *testing.T) {
	const name = `lu"na\1.jpg`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if hdr.Filename != name {
			t.Errorf("expected filename %q, got %q", name, hdr.Filename)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	c, _ := NewWithBaseURL(ts.URL, time.Second)
	err := c.DoMultipart(context.Background(), MultipartRequest{
		Path:     "/pets/upload-image?pet_id=1",
		FileName: name,
		File:     strings.NewReader("JPEGDATA"),
	}, nil)
	if err != nil {
		t.Fatalf("DoMultipart: %v", err)
	}
}
