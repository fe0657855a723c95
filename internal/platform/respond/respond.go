// Package respond escribe las respuestas del backend de desarrollo.
// Los errores siguen el formato {"detail": "..."} que entiende el cliente.
package respond

import (
	"encoding/json"
	"net/http"
)

// DetailBody es el cuerpo de error de la API.
type DetailBody struct {
	Detail string `json:"detail"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func Detail(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	JSON(w, status, DetailBody{Detail: msg})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// DecodeJSON rechaza campos desconocidos; el caller responde 400 si falla.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
