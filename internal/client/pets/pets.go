// Package pets envuelve el CRUD de mascotas y la subida de imagen.
package pets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"petverse/internal/platform/httpclient"
)

const (
	PathPets        = "/pets"
	PathUploadImage = "/pets/upload-image"

	BirthdateLayout = "2006-01-02"
)

var ErrInvalidInput = errors.New("invalid pet input")

// Pet es el registro que devuelve el backend. El id siempre lo asigna el backend.
type Pet struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Species   string   `json:"species"`
	Breed     *string  `json:"breed,omitempty"`
	Sex       *string  `json:"sex,omitempty"`
	Birthdate *string  `json:"birthdate,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

type CreateInput struct {
	Name      string   `json:"name"`
	Species   string   `json:"species"`
	Breed     *string  `json:"breed,omitempty"`
	Sex       *string  `json:"sex,omitempty"`
	Birthdate *string  `json:"birthdate,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Species) == "" {
		return fmt.Errorf("%w: species is required", ErrInvalidInput)
	}
	return validateOptional(in.Birthdate, in.Weight)
}

// UpdateInput es parcial: solo viajan los campos no nil.
type UpdateInput struct {
	Name      *string  `json:"name,omitempty"`
	Species   *string  `json:"species,omitempty"`
	Breed     *string  `json:"breed,omitempty"`
	Sex       *string  `json:"sex,omitempty"`
	Birthdate *string  `json:"birthdate,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
}

func (in UpdateInput) Validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if in.Species != nil && strings.TrimSpace(*in.Species) == "" {
		return fmt.Errorf("%w: species cannot be empty", ErrInvalidInput)
	}
	return validateOptional(in.Birthdate, in.Weight)
}

func validateOptional(birthdate *string, weight *float64) error {
	if birthdate != nil && *birthdate != "" {
		if _, err := time.Parse(BirthdateLayout, *birthdate); err != nil {
			return fmt.Errorf("%w: birthdate must be YYYY-MM-DD", ErrInvalidInput)
		}
	}
	if weight != nil && *weight < 0 {
		return fmt.Errorf("%w: weight must be >= 0", ErrInvalidInput)
	}
	return nil
}

type Client struct {
	http *httpclient.Client
}

func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

func (c *Client) List(ctx context.Context, token string) ([]Pet, error) {
	out, err := httpclient.Do[[]Pet](ctx, c.http, httpclient.Request{
		Path:  PathPets,
		Token: token,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Pet{}
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, in CreateInput, token string) (Pet, error) {
	if err := in.Validate(); err != nil {
		return Pet{}, err
	}
	return httpclient.Do[Pet](ctx, c.http, httpclient.Request{
		Path:   PathPets,
		Method: http.MethodPost,
		Body:   in,
		Token:  token,
	})
}

func (c *Client) Update(ctx context.Context, petID int64, in UpdateInput, token string) (Pet, error) {
	if err := in.Validate(); err != nil {
		return Pet{}, err
	}
	return httpclient.Do[Pet](ctx, c.http, httpclient.Request{
		Path:   petPath(petID),
		Method: http.MethodPut,
		Body:   in,
		Token:  token,
	})
}

func (c *Client) Delete(ctx context.Context, petID int64, token string) error {
	return c.http.DoJSON(ctx, httpclient.Request{
		Path:   petPath(petID),
		Method: http.MethodDelete,
		Token:  token,
	}, nil)
}

type uploadResponse struct {
	AvatarURL string `json:"avatar_url"`
}

// UploadImage sube la imagen de perfil (campo "file") y devuelve el avatar_url.
// Sin filename se usa pet_<id>.jpg.
func (c *Client) UploadImage(ctx context.Context, petID int64, filename string, r io.Reader, token string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		filename = "pet_" + strconv.FormatInt(petID, 10) + ".jpg"
	}
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))

	var out uploadResponse
	err := c.http.DoMultipart(ctx, httpclient.MultipartRequest{
		Path:        PathUploadImage + "?pet_id=" + strconv.FormatInt(petID, 10),
		Token:       token,
		FieldName:   "file",
		FileName:    filepath.Base(filename),
		ContentType: ctype,
		File:        r,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.AvatarURL, nil
}

func petPath(id int64) string {
	return PathPets + "/" + strconv.FormatInt(id, 10)
}
