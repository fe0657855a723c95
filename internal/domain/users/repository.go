package users

import "context"

type Repository interface {
	// Create asigna el ID. Devuelve ErrEmailTaken si el email ya existe.
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// PreferencesRepository guarda settings y dirección (uno por usuario).
// Los Get devuelven el zero value si el usuario nunca guardó nada.
type PreferencesRepository interface {
	GetSettings(ctx context.Context, userID int64) (Settings, error)
	SaveSettings(ctx context.Context, userID int64, s Settings) error
	GetAddress(ctx context.Context, userID int64) (Address, error)
	SaveAddress(ctx context.Context, userID int64, a Address) error
}
