package pets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrNoImageStore = errors.New("image upload not configured")
)

type Service struct {
	repo   Repository
	images ImageStore
	now    func() time.Time
}

func NewService(repo Repository, images ImageStore) *Service {
	return &Service{
		repo:   repo,
		images: images,
		now:    time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     *string
	Sex       *string
	Birthdate *string // YYYY-MM-DD
	Weight    *float64
	AvatarURL *string
}

// UpdateInput es parcial: nil = no tocar.
type UpdateInput struct {
	Name      *string
	Species   *string
	Breed     *string
	Sex       *string
	Birthdate *string
	Weight    *float64
	AvatarURL *string
}

func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (Pet, error) {
	if ownerID <= 0 {
		return Pet{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Pet{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	species := strings.TrimSpace(in.Species)
	if species == "" {
		return Pet{}, fmt.Errorf("%w: species is required", ErrInvalidInput)
	}
	bd, err := parseBirthdate(in.Birthdate)
	if err != nil {
		return Pet{}, err
	}
	if err := checkWeight(in.Weight); err != nil {
		return Pet{}, err
	}

	now := s.now()
	return s.repo.Create(ctx, Pet{
		OwnerID:   ownerID,
		Name:      name,
		Species:   species,
		Breed:     trimmed(in.Breed),
		Sex:       trimmed(in.Sex),
		Birthdate: bd,
		Weight:    in.Weight,
		AvatarURL: trimmed(in.AvatarURL),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get devuelve ErrNotFound también si la mascota es de otro dueño.
func (s *Service) Get(ctx context.Context, ownerID, id int64) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerID != ownerID {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Pet, error) {
	if ownerID <= 0 {
		return []Pet{}, nil
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id int64, in UpdateInput) (Pet, error) {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Pet{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		p.Name = v
	}
	if in.Species != nil {
		v := strings.TrimSpace(*in.Species)
		if v == "" {
			return Pet{}, fmt.Errorf("%w: species cannot be empty", ErrInvalidInput)
		}
		p.Species = v
	}
	if in.Breed != nil {
		p.Breed = trimmed(in.Breed)
	}
	if in.Sex != nil {
		p.Sex = trimmed(in.Sex)
	}
	if in.Birthdate != nil {
		bd, err := parseBirthdate(in.Birthdate)
		if err != nil {
			return Pet{}, err
		}
		p.Birthdate = bd
	}
	if in.Weight != nil {
		if err := checkWeight(in.Weight); err != nil {
			return Pet{}, err
		}
		p.Weight = in.Weight
	}
	if in.AvatarURL != nil {
		p.AvatarURL = trimmed(in.AvatarURL)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	p, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.images != nil && p.AvatarURL != nil {
		_ = s.images.DeletePetImage(ctx, *p.AvatarURL)
	}
	return nil
}

// UploadImage guarda el archivo y actualiza avatar_url de la mascota.
// Si la actualización falla se borra el archivo nuevo; si no, se borra el avatar anterior.
func (s *Service) UploadImage(ctx context.Context, ownerID, id int64, filename string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", ErrNoImageStore
	}
	current, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}

	url, err := s.images.SavePetImage(ctx, id, filename, r)
	if err != nil {
		return "", fmt.Errorf("save pet image: %w", err)
	}
	if _, err := s.Update(ctx, ownerID, id, UpdateInput{AvatarURL: &url}); err != nil {
		_ = s.images.DeletePetImage(ctx, url)
		return "", err
	}
	if current.AvatarURL != nil && *current.AvatarURL != url {
		_ = s.images.DeletePetImage(ctx, *current.AvatarURL)
	}
	return url, nil
}

func parseBirthdate(v *string) (*time.Time, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	t, err := time.Parse(BirthdateLayout, strings.TrimSpace(*v))
	if err != nil {
		return nil, fmt.Errorf("%w: birthdate must be YYYY-MM-DD", ErrInvalidInput)
	}
	return &t, nil
}

func checkWeight(w *float64) error {
	if w != nil && *w < 0 {
		return fmt.Errorf("%w: weight must be >= 0", ErrInvalidInput)
	}
	return nil
}

// trimmed normaliza opcionales: "" cuenta como sin dato.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
