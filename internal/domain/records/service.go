package records

import (
	"context"
	"errors"
	"time"

	"petverse/internal/domain/pets"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("record not found")
	ErrPetNotFound  = errors.New("pet not found")
)

// PetOwnership lo implementa pets.Service.
type PetOwnership interface {
	OwnerOf(ctx context.Context, petID int64) (int64, error)
}

type Service struct {
	repo Repository
	pets PetOwnership
	now  func() time.Time
}

func NewService(repo Repository, petsOwnership PetOwnership) *Service {
	return &Service{
		repo: repo,
		pets: petsOwnership,
		now:  time.Now,
	}
}

func (s *Service) List(ctx context.Context, userID, petID int64, kind Kind) ([]Record, error) {
	if err := s.authorize(ctx, userID, petID); err != nil {
		return nil, err
	}
	return s.repo.ListByPet(ctx, kind, petID)
}

func (s *Service) Create(ctx context.Context, userID, petID int64, kind Kind, fields map[string]any) (Record, error) {
	if err := s.authorize(ctx, userID, petID); err != nil {
		return Record{}, err
	}
	clean, err := NormalizeFields(kind, fields)
	if err != nil {
		return Record{}, err
	}

	now := s.now()
	return s.repo.Create(ctx, Record{
		PetID:     petID,
		Kind:      kind,
		Fields:    clean,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Update mezcla los campos enviados sobre los existentes.
func (s *Service) Update(ctx context.Context, userID, petID int64, kind Kind, id int64, fields map[string]any) (Record, error) {
	if err := s.authorize(ctx, userID, petID); err != nil {
		return Record{}, err
	}
	clean, err := NormalizeFields(kind, fields)
	if err != nil {
		return Record{}, err
	}

	rec, err := s.repo.Get(ctx, kind, petID, id)
	if err != nil {
		return Record{}, err
	}
	if len(clean) == 0 {
		return rec, nil
	}

	merged := make(map[string]any, len(rec.Fields)+len(clean))
	for k, v := range rec.Fields {
		merged[k] = v
	}
	for k, v := range clean {
		merged[k] = v
	}
	rec.Fields = merged
	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, userID, petID int64, kind Kind, id int64) error {
	if err := s.authorize(ctx, userID, petID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, kind, petID, id)
}

// authorize: solo el dueño ve y modifica el historial.
func (s *Service) authorize(ctx context.Context, userID, petID int64) error {
	owner, err := s.pets.OwnerOf(ctx, petID)
	if errors.Is(err, pets.ErrNotFound) {
		return ErrPetNotFound
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return ErrPetNotFound
	}
	return nil
}
