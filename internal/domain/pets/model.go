package pets

import "time"

// BirthdateLayout es el formato de fecha que viaja en la API.
const BirthdateLayout = "2006-01-02"

// Pet representa el perfil de una mascota. El ID lo asigna el backend.
type Pet struct {
	ID      int64
	OwnerID int64

	Name    string
	Species string

	// Opcionales: nil = sin dato.
	Breed     *string
	Sex       *string
	Birthdate *time.Time
	Weight    *float64
	AvatarURL *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
