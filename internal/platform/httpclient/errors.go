package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/tidwall/gjson"
)

const (
	MessageTimeout          = "request timed out"
	MessageRequestFailed    = "request failed"
	MessageUnreachable      = "could not connect to server"
	MessageInvalidPayload   = "invalid response payload"
	MessageResponseTooLarge = "response too large"
)

var errResponseTooLarge = errors.New("response body exceeds limit")

// APIError es el único error que sale del executor.
// - Status: status HTTP real, o 408 (timeout/cancelación) / 500 (transporte).
// - Payload: body parseado (map/slice/...) o nil si no era JSON.
type APIError struct {
	Status  int
	Message string
	Payload any

	cause error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// Timeout indica si el request se canceló o venció el deadline.
func (e *APIError) Timeout() bool { return e.Status == http.StatusRequestTimeout }

// AsAPIError extrae el *APIError de una cadena de errores.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reporta si err es un *APIError con ese status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

func IsTimeout(err error) bool {
	return IsStatus(err, http.StatusRequestTimeout)
}

// newStatusError arma el error de una respuesta no-2xx.
// El mensaje sale del campo string "detail" si existe (formato FastAPI).
func newStatusError(status int, raw []byte, payload any) *APIError {
	msg := MessageRequestFailed
	if payload != nil {
		if d := gjson.GetBytes(raw, "detail"); d.Type == gjson.String && d.Str != "" {
			msg = d.Str
		}
	}
	return &APIError{Status: status, Message: msg, Payload: payload}
}

func transportError(ctx context.Context, err error) *APIError {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &APIError{Status: http.StatusRequestTimeout, Message: MessageTimeout, cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &APIError{Status: http.StatusRequestTimeout, Message: MessageTimeout, cause: err}
	}

	msg := err.Error()
	if msg == "" {
		msg = MessageUnreachable
	}
	return &APIError{Status: http.StatusInternalServerError, Message: msg, cause: err}
}
