package securestore

import "context"

// Storage es el almacenamiento seguro del dispositivo/host (clave -> string).
// Available puede cambiar durante la vida del proceso; se consulta en cada operación.
type Storage interface {
	Available(ctx context.Context) (bool, error)
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Unavailable nunca está disponible: fuerza el modo solo-memoria.
type Unavailable struct{}

func (Unavailable) Available(context.Context) (bool, error)           { return false, nil }
func (Unavailable) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Unavailable) Set(context.Context, string, string) error         { return nil }
func (Unavailable) Delete(context.Context, string) error              { return nil }
