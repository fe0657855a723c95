package records

import "time"

// Record es una entrada del historial de la mascota.
// Fields contiene solo campos válidos para Kind (ver NormalizeFields).
type Record struct {
	ID    int64
	PetID int64
	Kind  Kind

	Fields map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}
