package pets

import (
	"context"
	"io"
)

type Repository interface {
	// Create asigna el ID y devuelve la mascota guardada.
	Create(ctx context.Context, p Pet) (Pet, error)
	GetByID(ctx context.Context, id int64) (Pet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Pet, error)
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id int64) error
}

// ImageStore guarda la imagen de perfil y devuelve la URL pública relativa.
// DeletePetImage ignora URLs que no son suyas y archivos que ya no existen.
type ImageStore interface {
	SavePetImage(ctx context.Context, petID int64, filename string, r io.Reader) (string, error)
	DeletePetImage(ctx context.Context, url string) error
}
