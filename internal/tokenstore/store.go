// Package tokenstore persiste el par de credenciales de la sesión actual.
//
// Si el almacenamiento seguro reporta estar disponible se usa ese; si no, el par
// vive solo en memoria mientras dure el proceso. La disponibilidad se consulta
// en cada operación porque puede cambiar en runtime.
package tokenstore

import (
	"context"
	"fmt"
	"sync"

	"petverse/internal/platform/logger"
	"petverse/internal/ports/securestore"
)

// Key es la entrada única en el almacenamiento seguro.
const Key = "petverse.auth.tokens"

type Store struct {
	storage securestore.Storage
	key     string
	log     logger.Logger

	// mu serializa Save/Get/Clear completos: a lo sumo un par "actual" y sin lecturas a medias.
	mu     sync.Mutex
	memory *Credentials
}

type Option func(*Store)

func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(l) }
}

// WithKey cambia la clave (útil para tests que comparten backend).
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// New crea el store. storage nil equivale a securestore.Unavailable.
func New(storage securestore.Storage, opts ...Option) *Store {
	if storage == nil {
		storage = securestore.Unavailable{}
	}
	s := &Store{
		storage: storage,
		key:     Key,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save serializa el par y lo escribe en el almacenamiento seguro o, si no está disponible, en memoria.
func (s *Store) Save(ctx context.Context, c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	serialized, err := encode(c)
	if err != nil {
		return fmt.Errorf("tokenstore: encode credentials: %w", err)
	}

	if s.available(ctx) {
		if err := s.storage.Set(ctx, s.key, serialized); err != nil {
			return fmt.Errorf("tokenstore: write secure storage: %w", err)
		}
		return nil
	}

	cp := c
	s.memory = &cp
	return nil
}

// Get devuelve ok=false si no hay par guardado, el backend no está disponible
// y la memoria está vacía, o el valor guardado está corrupto o sin access token.
func (s *Store) Get(ctx context.Context) (Credentials, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.available(ctx) {
		value, found, err := s.storage.Get(ctx, s.key)
		if err != nil {
			return Credentials{}, false, fmt.Errorf("tokenstore: read secure storage: %w", err)
		}
		if !found {
			return Credentials{}, false, nil
		}
		c, ok := decode(value)
		if !ok {
			s.log.Debug("stored credentials are malformed, treating as absent", map[string]any{"key": s.key})
			return Credentials{}, false, nil
		}
		return c, true, nil
	}

	if s.memory == nil || s.memory.IsZero() {
		return Credentials{}, false, nil
	}
	return *s.memory, true, nil
}

// Clear borra la entrada durable (si hay backend) y siempre vacía la memoria.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = nil

	if s.available(ctx) {
		if err := s.storage.Delete(ctx, s.key); err != nil {
			return fmt.Errorf("tokenstore: delete secure storage: %w", err)
		}
	}
	return nil
}

// available nunca falla: un error del probe es "no disponible".
func (s *Store) available(ctx context.Context) bool {
	ok, err := s.storage.Available(ctx)
	if err != nil {
		s.log.Debug("secure storage probe failed, using memory", map[string]any{"error": err.Error()})
		return false
	}
	return ok
}
