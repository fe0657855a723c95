package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// MultipartRequest sube un archivo como multipart/form-data.
type MultipartRequest struct {
	Path        string
	Token       string
	FieldName   string // default "file"
	FileName    string
	ContentType string // default application/octet-stream
	File        io.Reader
	Fields      map[string]string
}

// DoMultipart comparte URL, auth, timeout y normalización de errores con DoJSON;
// solo cambia el body y el Content-Type.
func (c *Client) DoMultipart(ctx context.Context, req MultipartRequest, out any) error {
	if c == nil || c.HTTP == nil {
		return &APIError{Status: http.StatusInternalServerError, Message: "httpclient: nil client"}
	}
	if req.File == nil {
		return &APIError{Status: http.StatusInternalServerError, Message: "httpclient: multipart file required"}
	}

	field := strings.TrimSpace(req.FieldName)
	if field == "" {
		field = "file"
	}
	ctype := strings.TrimSpace(req.ContentType)
	if ctype == "" {
		ctype = "application/octet-stream"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range req.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return multipartErr(err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(req.FileName)))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return multipartErr(err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return multipartErr(err)
	}
	if err := mw.Close(); err != nil {
		return multipartErr(err)
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", mw.FormDataContentType())
	if token := strings.TrimSpace(req.Token); token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	return c.exchange(ctx, http.MethodPost, req.Path, headers, buf.Bytes(), out)
}

// mismo escape que multipart.CreateFormFile
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartErr(err error) *APIError {
	return &APIError{
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("httpclient: build multipart: %v", err),
		cause:   err,
	}
}
