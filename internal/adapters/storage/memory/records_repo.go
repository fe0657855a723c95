package memory

import (
	"context"
	"sort"
	"sync"

	"petverse/internal/domain/records"
)

type recordRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]records.Record
}

func NewRecordRepo() records.Repository {
	return &recordRepo{
		byID: make(map[int64]records.Record),
	}
}

func (r *recordRepo) Create(ctx context.Context, rec records.Record) (records.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	rec.Fields = cloneFields(rec.Fields)
	r.byID[rec.ID] = rec
	return rec, nil
}

func (r *recordRepo) Get(ctx context.Context, kind records.Kind, petID, id int64) (records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok || rec.Kind != kind || rec.PetID != petID {
		return records.Record{}, records.ErrNotFound
	}
	rec.Fields = cloneFields(rec.Fields)
	return rec, nil
}

func (r *recordRepo) ListByPet(ctx context.Context, kind records.Kind, petID int64) ([]records.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]records.Record, 0)
	for _, rec := range r.byID {
		if rec.Kind == kind && rec.PetID == petID {
			rec.Fields = cloneFields(rec.Fields)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *recordRepo) Update(ctx context.Context, rec records.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[rec.ID]
	if !ok || cur.Kind != rec.Kind || cur.PetID != rec.PetID {
		return records.ErrNotFound
	}
	rec.Fields = cloneFields(rec.Fields)
	r.byID[rec.ID] = rec
	return nil
}

func (r *recordRepo) Delete(ctx context.Context, kind records.Kind, petID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok || cur.Kind != kind || cur.PetID != petID {
		return records.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// los mapas se copian para que el llamador no mute el estado guardado
func cloneFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
