package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"petverse/internal/platform/logger"
)

const (
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 4 << 20
)

var ErrNoBaseURL = errors.New("httpclient: relative path requires BaseURL")

// Observer recibe una notificación por intercambio terminado (incluye 408/500 sintéticos).
type Observer interface {
	ObserveRequest(method, path string, status int, elapsed time.Duration)
}

// Client envuelve *http.Client con la semántica de la API de PetVerse:
// headers JSON, bearer opcional, timeout por request y un único tipo de error (*APIError).
//
// El timeout NO se configura en http.Client: se aplica por request vía context,
// así un deadline del caller puede ser más largo que Timeout.
type Client struct {
	HTTP     *http.Client
	BaseURL  string // sin "/" final
	Timeout  time.Duration
	Logger   logger.Logger
	Observer Observer
}

// New crea un Client sin BaseURL (solo URLs absolutas).
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:    &http.Client{},
		Timeout: timeout,
		Logger:  logger.Nop(),
	}
}

// NewWithBaseURL crea un Client con BaseURL + timeout.
func NewWithBaseURL(baseURL string, timeout time.Duration) (*Client, error) {
	c := New(timeout)
	if strings.TrimSpace(baseURL) == "" {
		return c, nil
	}
	if _, err := url.ParseRequestURI(strings.TrimSpace(baseURL)); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return c, nil
}

// NewWithTransport permite inyectar un Transport (p.ej. para tests).
func NewWithTransport(baseURL string, timeout time.Duration, tr http.RoundTripper) (*Client, error) {
	c, err := NewWithBaseURL(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		tr = http.DefaultTransport
	}
	c.HTTP = &http.Client{Transport: tr}
	return c, nil
}

// Request describe un intercambio. Se consume entero en una llamada y no se guarda.
type Request struct {
	Path    string // absoluta (http/https) o relativa a BaseURL
	Method  string // default GET
	Body    any    // nil => sin body
	Token   string // bearer opcional
	Headers map[string]string
}

// DoJSON ejecuta el request y decodifica la respuesta 2xx en out (si out != nil).
// Body vacío o no-JSON en 2xx deja out en su zero value.
// Cualquier fallo se devuelve como *APIError.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	if c == nil || c.HTTP == nil {
		return &APIError{Status: http.StatusInternalServerError, Message: "httpclient: nil client"}
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return &APIError{
				Status:  http.StatusInternalServerError,
				Message: fmt.Sprintf("httpclient: marshal json: %v", err),
				cause:   err,
			}
		}
		body = b
	}

	// Defaults primero; los headers del caller pisan (last write wins).
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	for k, v := range req.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		headers.Set(k, v)
	}
	if token := strings.TrimSpace(req.Token); token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	return c.exchange(ctx, method, req.Path, headers, body, out)
}

// Do es el equivalente tipado de DoJSON.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var out T
	if err := c.DoJSON(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (c *Client) exchange(
	ctx context.Context,
	method string,
	path string,
	headers http.Header,
	body []byte,
	out any,
) error {
	start := time.Now()
	log := logger.OrNop(c.Logger)

	fullURL, err := c.resolveURL(path)
	if err != nil {
		return &APIError{Status: http.StatusInternalServerError, Message: err.Error(), cause: err}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, rdr)
	if err != nil {
		return &APIError{
			Status:  http.StatusInternalServerError,
			Message: fmt.Sprintf("httpclient: new request: %v", err),
			cause:   err,
		}
	}
	httpReq.Header = headers

	log.Debug("http request", map[string]any{
		"method":   method,
		"url":      fullURL,
		"has_body": body != nil,
		"headers":  headerNames(headers),
	})

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		apiErr := transportError(ctx, err)
		c.observe(method, path, apiErr.Status, start)
		log.Warn("http request failed", map[string]any{
			"method": method,
			"url":    fullURL,
			"status": apiErr.Status,
			"error":  err.Error(),
		})
		return apiErr
	}
	defer resp.Body.Close()

	raw, err := readAtMost(resp.Body, maxResponseBytes)
	if errors.Is(err, errResponseTooLarge) {
		// no se parsea un body truncado
		c.observe(method, path, resp.StatusCode, start)
		log.Warn("http response too large", map[string]any{
			"method": method,
			"url":    fullURL,
			"status": resp.StatusCode,
			"limit":  maxResponseBytes,
		})
		return &APIError{Status: http.StatusInternalServerError, Message: MessageResponseTooLarge, cause: err}
	}
	if err != nil {
		apiErr := transportError(ctx, err)
		c.observe(method, path, apiErr.Status, start)
		return apiErr
	}

	c.observe(method, path, resp.StatusCode, start)
	log.Debug("http response", map[string]any{
		"method":      method,
		"url":         fullURL,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	payload := parsePayload(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, raw, payload)
	}

	if out == nil || payload == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Status:  resp.StatusCode,
			Message: MessageInvalidPayload,
			Payload: payload,
			cause:   err,
		}
	}
	return nil
}

// withTimeout: si el caller ya trae deadline, manda el suyo; si no, aplica c.Timeout.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (c *Client) observe(method, path string, status int, start time.Time) {
	if c.Observer == nil {
		return
	}
	c.Observer.ObserveRequest(method, path, status, time.Since(start))
}

// ResolveURL expone la resolución de paths (la usa la CLI para mostrar destinos).
func (c *Client) ResolveURL(pathOrURL string) (string, error) {
	return c.resolveURL(pathOrURL)
}

func (c *Client) resolveURL(pathOrURL string) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	if pathOrURL == "" {
		return "", errors.New("httpclient: empty url")
	}

	// Si ya es URL absoluta, úsala tal cual.
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL, nil
	}

	if strings.TrimSpace(c.BaseURL) == "" {
		return "", ErrNoBaseURL
	}

	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return strings.TrimRight(c.BaseURL, "/") + pathOrURL, nil
}

// parsePayload devuelve nil si el body está vacío o no es JSON válido.
func parsePayload(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func headerNames(h http.Header) []string {
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// readAtMost lee hasta max bytes; si el body tiene más, devuelve errResponseTooLarge.
func readAtMost(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = 1 << 20
	}
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, errResponseTooLarge
	}
	return b, nil
}
