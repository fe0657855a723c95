package records

import "context"

type Repository interface {
	// Create asigna el ID.
	Create(ctx context.Context, r Record) (Record, error)
	Get(ctx context.Context, kind Kind, petID, id int64) (Record, error)
	ListByPet(ctx context.Context, kind Kind, petID int64) ([]Record, error)
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, kind Kind, petID, id int64) error
}
