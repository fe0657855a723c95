package pets

import "context"

// OwnerOf expone el ownerID de una mascota.
// Lo usa records para autorizar sin importar el handler de pets.
func (s *Service) OwnerOf(ctx context.Context, petID int64) (int64, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return 0, err
	}
	return p.OwnerID, nil
}
