// Package records consume el historial por mascota (/pets/{id}/{kind}).
package records

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tidwall/gjson"

	domain "petverse/internal/domain/records"
	"petverse/internal/platform/httpclient"
)

// Los kinds y la validación de campos son los mismos que aplica el backend.
type Kind = domain.Kind

var ErrInvalidInput = domain.ErrInvalidInput

// Record separa los campos de identidad del resto.
type Record struct {
	ID     int64
	PetID  int64
	Fields map[string]any
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["id"] = r.ID
	out["pet_id"] = r.PetID
	return json.Marshal(out)
}

type Client struct {
	http *httpclient.Client
}

func NewClient(c *httpclient.Client) *Client {
	return &Client{http: c}
}

func (c *Client) List(ctx context.Context, petID int64, kind string, token string) ([]Record, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.http.DoJSON(ctx, httpclient.Request{Path: kindPath(petID, k), Token: token}, &raw); err != nil {
		return nil, err
	}

	out := make([]Record, 0)
	for _, item := range gjson.ParseBytes(raw).Array() {
		rec, err := parseRecord(k, item)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, petID int64, kind string, fields map[string]any, token string) (Record, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return Record{}, err
	}
	clean, err := domain.NormalizeFields(k, fields)
	if err != nil {
		return Record{}, err
	}
	return c.send(ctx, http.MethodPost, kindPath(petID, k), k, clean, token)
}

// Update envía solo los campos dados; el backend mezcla con los existentes.
func (c *Client) Update(ctx context.Context, petID int64, kind string, id int64, fields map[string]any, token string) (Record, error) {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return Record{}, err
	}
	clean, err := domain.NormalizeFields(k, fields)
	if err != nil {
		return Record{}, err
	}
	return c.send(ctx, http.MethodPut, recordPath(petID, k, id), k, clean, token)
}

func (c *Client) Delete(ctx context.Context, petID int64, kind string, id int64, token string) error {
	k, err := domain.ParseKind(kind)
	if err != nil {
		return err
	}
	return c.http.DoJSON(ctx, httpclient.Request{
		Path:   recordPath(petID, k, id),
		Method: http.MethodDelete,
		Token:  token,
	}, nil)
}

func (c *Client) send(ctx context.Context, method, path string, k Kind, fields map[string]any, token string) (Record, error) {
	var raw json.RawMessage
	err := c.http.DoJSON(ctx, httpclient.Request{
		Path:   path,
		Method: method,
		Body:   fields,
		Token:  token,
	}, &raw)
	if err != nil {
		return Record{}, err
	}
	return parseRecord(k, gjson.ParseBytes(raw))
}

// parseRecord descarta campos que el kind no conoce en lugar de fallar:
// el backend puede sumar columnas (created_at, etc.).
func parseRecord(k Kind, item gjson.Result) (Record, error) {
	rec := Record{
		ID:    item.Get("id").Int(),
		PetID: item.Get("pet_id").Int(),
	}

	known := map[string]any{}
	for _, name := range domain.FieldNames(k) {
		if v := item.Get(name); v.Exists() {
			known[name] = v.Value()
		}
	}
	fields, err := domain.NormalizeFields(k, known)
	if err != nil {
		return Record{}, err
	}
	rec.Fields = fields
	return rec, nil
}

func kindPath(petID int64, k Kind) string {
	return "/pets/" + strconv.FormatInt(petID, 10) + "/" + string(k)
}

func recordPath(petID int64, k Kind, id int64) string {
	return kindPath(petID, k) + "/" + strconv.FormatInt(id, 10)
}
