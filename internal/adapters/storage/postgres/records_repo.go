package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"petverse/internal/domain/records"
)

type RecordsRepo struct {
	db *sql.DB
}

func NewRecordsRepo(db *sql.DB) *RecordsRepo {
	return &RecordsRepo{db: db}
}

func (r *RecordsRepo) Create(ctx context.Context, rec records.Record) (records.Record, error) {
	raw, err := json.Marshal(rec.Fields)
	if err != nil {
		return records.Record{}, fmt.Errorf("postgres: encode record: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO pet_records (pet_id, kind, fields, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, rec.PetID, string(rec.Kind), raw, rec.CreatedAt, rec.UpdatedAt).Scan(&rec.ID)
	if err != nil {
		return records.Record{}, fmt.Errorf("postgres: insert record: %w", err)
	}
	return rec, nil
}

func (r *RecordsRepo) Get(ctx context.Context, kind records.Kind, petID, id int64) (records.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, pet_id, kind, fields, created_at, updated_at
		FROM pet_records
		WHERE id = $1 AND pet_id = $2 AND kind = $3
	`, id, petID, string(kind))

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Record{}, records.ErrNotFound
	}
	if err != nil {
		return records.Record{}, fmt.Errorf("postgres: get record: %w", err)
	}
	return rec, nil
}

func (r *RecordsRepo) ListByPet(ctx context.Context, kind records.Kind, petID int64) ([]records.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, pet_id, kind, fields, created_at, updated_at
		FROM pet_records
		WHERE pet_id = $1 AND kind = $2
		ORDER BY id ASC
	`, petID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("postgres: list records: %w", err)
	}
	defer rows.Close()

	out := make([]records.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RecordsRepo) Update(ctx context.Context, rec records.Record) error {
	raw, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("postgres: encode record: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE pet_records
		SET fields = $4, updated_at = $5
		WHERE id = $1 AND pet_id = $2 AND kind = $3
	`, rec.ID, rec.PetID, string(rec.Kind), raw, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: update record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

func (r *RecordsRepo) Delete(ctx context.Context, kind records.Kind, petID, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM pet_records WHERE id = $1 AND pet_id = $2 AND kind = $3
	`, id, petID, string(kind))
	if err != nil {
		return fmt.Errorf("postgres: delete record: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

func scanRecord(row rowScanner) (records.Record, error) {
	var (
		rec  records.Record
		kind string
		raw  []byte
	)
	if err := row.Scan(&rec.ID, &rec.PetID, &kind, &raw, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return records.Record{}, err
	}
	rec.Kind = records.Kind(kind)

	// vet_id vuelve como float64 desde JSONB; NormalizeFields lo repone a int64
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return records.Record{}, fmt.Errorf("decode fields: %w", err)
	}
	norm, err := records.NormalizeFields(rec.Kind, fields)
	if err != nil {
		return records.Record{}, err
	}
	rec.Fields = norm
	return rec, nil
}
