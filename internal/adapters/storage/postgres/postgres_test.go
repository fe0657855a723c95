package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"petverse/internal/domain/pets"
	"petverse/internal/domain/records"
	"petverse/internal/domain/users"
)

func newMock(t *testing.T, opts ...sqlmock.SqlMockOption) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(opts...)
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("expectations not met: %v", err)
		}
		_ = db.Close()
	})
	return db, mock
}

func TestMigrate_RunsSchemaInOrder(t *testing.T) {
	db, mock := newMock(t)
	for _, stmt := range schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
}

func TestMigrate_StopsOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS secure_storage").WillReturnError(errors.New("permission denied"))

	err := Migrate(context.Background(), db)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestCredentialStore_AvailableUsesPing(t *testing.T) {
	db, mock := newMock(t, sqlmock.MonitorPingsOption(true))
	s := NewCredentialStore(db)

	mock.ExpectPing()
	if ok, err := s.Available(context.Background()); !ok || err != nil {
		t.Fatalf("expected available, got %v %v", ok, err)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	if ok, err := s.Available(context.Background()); ok || err == nil {
		t.Fatalf("expected unavailable with error, got %v %v", ok, err)
	}
}

func TestCredentialStore_GetSetDelete(t *testing.T) {
	db, mock := newMock(t)
	s := NewCredentialStore(db)
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM secure_storage WHERE key = \$1`).
		WithArgs("petverse.auth.tokens").
		WillReturnError(sql.ErrNoRows)
	if _, found, err := s.Get(ctx, "petverse.auth.tokens"); found || err != nil {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}

	mock.ExpectExec("INSERT INTO secure_storage").
		WithArgs("petverse.auth.tokens", `{"access_token":"a","token_type":"bearer"}`, s.now().UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := s.Set(ctx, "petverse.auth.tokens", `{"access_token":"a","token_type":"bearer"}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	mock.ExpectQuery(`SELECT value FROM secure_storage`).
		WithArgs("petverse.auth.tokens").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"access_token":"a","token_type":"bearer"}`))
	got, found, err := s.Get(ctx, "petverse.auth.tokens")
	if err != nil || !found || got != `{"access_token":"a","token_type":"bearer"}` {
		t.Fatalf("unexpected Get() = %q %v %v", got, found, err)
	}

	mock.ExpectExec(`DELETE FROM secure_storage WHERE key = \$1`).
		WithArgs("petverse.auth.tokens").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := s.Delete(ctx, "petverse.auth.tokens"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
}

func TestPetsRepo_CreateReturnsID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)

	mock.ExpectQuery("INSERT INTO pets").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	p, err := repo.Create(context.Background(), pets.Pet{OwnerID: 1, Name: "Luna", Species: "dog"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.ID != 7 {
		t.Fatalf("expected id 7, got %d", p.ID)
	}
}

func TestPetsRepo_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)
	now := time.Now().UTC()
	bd := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{"id", "owner_id", "name", "species", "breed", "sex", "birthdate", "weight", "avatar_url", "created_at", "updated_at"}
	mock.ExpectQuery(`FROM pets WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(7), int64(1), "Luna", "dog", nil, "female", bd, 12.5, nil, now, now))

	p, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if p.Breed != nil || p.Sex == nil || *p.Sex != "female" {
		t.Fatalf("unexpected nullable mapping %+v", p)
	}
	if p.Birthdate == nil || !p.Birthdate.Equal(bd) || p.Weight == nil || *p.Weight != 12.5 {
		t.Fatalf("unexpected birthdate/weight %+v", p)
	}

	mock.ExpectQuery(`FROM pets WHERE id = \$1`).WithArgs(int64(8)).WillReturnError(sql.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), 8); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pets.ErrNotFound, got %v", err)
	}
}

func TestPetsRepo_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPetsRepo(db)

	mock.ExpectExec(`DELETE FROM pets WHERE id = \$1`).WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Delete(context.Background(), 3); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected pets.ErrNotFound, got %v", err)
	}
}

func TestUsersRepo_CreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, Message: "duplicate key"})

	_, err := repo.Create(context.Background(), users.User{Name: "Ana", Email: "ana@example.com", Role: users.RoleTutor})
	if !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUsersRepo_SettingsJSONB(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUsersRepo(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT settings FROM user_settings`).WithArgs(int64(1)).WillReturnError(sql.ErrNoRows)
	s, err := repo.GetSettings(ctx, 1)
	if err != nil || s.Language != nil {
		t.Fatalf("expected empty settings, got %+v err=%v", s, err)
	}

	mock.ExpectQuery(`SELECT settings FROM user_settings`).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"settings"}).AddRow([]byte(`{"language":"es"}`)))
	s, err = repo.GetSettings(ctx, 1)
	if err != nil || s.Language == nil || *s.Language != "es" {
		t.Fatalf("expected language es, got %+v err=%v", s, err)
	}

	lang := "en"
	mock.ExpectExec("INSERT INTO user_settings").
		WithArgs(int64(1), []byte(`{"language":"en"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SaveSettings(ctx, 1, users.Settings{Language: &lang}); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}
}

func TestRecordsRepo_GetRestoresIntegers(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordsRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM pet_records").
		WithArgs(int64(5), int64(2), "medical-visits").
		WillReturnRows(sqlmock.NewRows([]string{"id", "pet_id", "kind", "fields", "created_at", "updated_at"}).
			AddRow(int64(5), int64(2), "medical-visits", []byte(`{"vet_id":3,"diagnosis":"otitis"}`), now, now))

	rec, err := repo.Get(context.Background(), records.KindMedicalVisits, 2, 5)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if rec.Fields["vet_id"] != int64(3) || rec.Fields["diagnosis"] != "otitis" {
		t.Fatalf("unexpected fields %+v", rec.Fields)
	}
}

func TestRecordsRepo_UpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewRecordsRepo(db)

	mock.ExpectExec("UPDATE pet_records").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), records.Record{ID: 1, PetID: 2, Kind: records.KindWeights, Fields: map[string]any{}})
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected records.ErrNotFound, got %v", err)
	}
}

func TestCredentialStore_EnsureTable(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS secure_storage").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := NewCredentialStore(db).EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable() error: %v", err)
	}
}
