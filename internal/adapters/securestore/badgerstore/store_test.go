package badgerstore

import (
	"context"
	"errors"
	"testing"

	"petverse/internal/tokenstore"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)

	if _, found, err := s.Get(ctx, "missing"); found || err != nil {
		t.Fatalf("expected not found, got found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}
	got, found, err := s.Get(ctx, "k")
	if err != nil || !found || got != "v2" {
		t.Fatalf("expected v2, got %q found=%v err=%v", got, found, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() of missing key error: %v", err)
	}
	if _, found, _ := s.Get(ctx, "k"); found {
		t.Fatalf("expected key gone")
	}
}

func TestStore_UnavailableAfterClose(t *testing.T) {
	s, err := Open(Config{InMemory: true}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	ok, err := s.Available(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected available, got %v %v", ok, err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if ok, _ := s.Available(context.Background()); ok {
		t.Fatalf("expected unavailable after close")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestOpen_RequiresDir(t *testing.T) {
	if _, err := Open(Config{}, nil); !errors.Is(err, ErrDirRequired) {
		t.Fatalf("expected ErrDirRequired, got %v", err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := s.Set(ctx, tokenstore.Key, `{"access_token":"a","token_type":"bearer"}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	s, err = Open(Config{Dir: dir}, nil)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()

	got, found, err := s.Get(ctx, tokenstore.Key)
	if err != nil || !found {
		t.Fatalf("expected value after reopen, found=%v err=%v", found, err)
	}
	if got != `{"access_token":"a","token_type":"bearer"}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestStore_BacksTokenStore(t *testing.T) {
	ctx := context.Background()
	ts := tokenstore.New(openInMemory(t))

	want := tokenstore.Credentials{AccessToken: "jwt", TokenType: "bearer"}
	if err := ts.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, ok, err := ts.Get(ctx)
	if err != nil || !ok || got != want {
		t.Fatalf("expected %+v, got %+v ok=%v err=%v", want, got, ok, err)
	}
	if err := ts.Clear(ctx); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, ok, _ := ts.Get(ctx); ok {
		t.Fatalf("expected none after Clear")
	}
}
