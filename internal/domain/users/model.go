package users

import "time"

// Roles conocidos. El backend no restringe otros valores.
const (
	RoleTutor = "tutor"
	RoleVet   = "vet"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string // vacío para cuentas creadas vía Google
	Role         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings son las preferencias del usuario. nil = sin definir.
// Los tags json se usan tanto en la API como en el almacenamiento JSONB.
type Settings struct {
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	PrivacyLevel         *string `json:"privacy_level,omitempty"`
	Language             *string `json:"language,omitempty"`
	Timezone             *string `json:"timezone,omitempty"`
}

// Merge pisa solo los campos presentes en patch.
func (s Settings) Merge(patch Settings) Settings {
	if patch.NotificationsEnabled != nil {
		s.NotificationsEnabled = patch.NotificationsEnabled
	}
	if patch.PrivacyLevel != nil {
		s.PrivacyLevel = patch.PrivacyLevel
	}
	if patch.Language != nil {
		s.Language = patch.Language
	}
	if patch.Timezone != nil {
		s.Timezone = patch.Timezone
	}
	return s
}

type Address struct {
	Country *string  `json:"country,omitempty"`
	City    *string  `json:"city,omitempty"`
	Address *string  `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

func (a Address) Merge(patch Address) Address {
	if patch.Country != nil {
		a.Country = patch.Country
	}
	if patch.City != nil {
		a.City = patch.City
	}
	if patch.Address != nil {
		a.Address = patch.Address
	}
	if patch.Lat != nil {
		a.Lat = patch.Lat
	}
	if patch.Lng != nil {
		a.Lng = patch.Lng
	}
	return a
}
