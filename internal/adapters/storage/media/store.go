// Package media guarda las imágenes subidas en disco y las expone bajo /media/.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix es el path público donde el router sirve Root.
const URLPrefix = "/media/"

var ErrRootRequired = errors.New("media: root dir is required")

type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, ErrRootRequired
	}
	if err := os.MkdirAll(filepath.Join(root, "pets"), 0o755); err != nil {
		return nil, fmt.Errorf("media: create dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Root() string { return s.root }

// SavePetImage escribe en <root>/pets/<petID>_<uuid><ext> y devuelve /media/pets/<archivo>.
// El nombre original solo aporta la extensión.
func (s *DiskStore) SavePetImage(ctx context.Context, petID int64, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if len(ext) > 8 {
		ext = ""
	}
	name := strconv.FormatInt(petID, 10) + "_" + uuid.NewString() + ext
	dir := filepath.Join(s.root, "pets")

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("media: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("media: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("media: close: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("media: rename: %w", err)
	}

	return URLPrefix + "pets/" + name, nil
}

// DeletePetImage borra un archivo guardado por SavePetImage.
// URLs externas o con path fuera de pets/ no se tocan.
func (s *DiskStore) DeletePetImage(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(strings.TrimSpace(url), URLPrefix+"pets/")
	if !ok || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil
	}
	if err := os.Remove(filepath.Join(s.root, "pets", name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: remove: %w", err)
	}
	return nil
}
