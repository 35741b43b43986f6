package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/cloudshare/cloudshare-go/cache"
	"github.com/cloudshare/cloudshare-go/models"
	"github.com/cloudshare/cloudshare-go/normalize"
)

type filesResponse struct {
	Files []normalize.RawFile `json:"files"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ListFiles returns the authenticated user's files, normalized, cached under
// the untargeted File tag.
func (c *HTTPClient) ListFiles(ctx context.Context) ([]models.File, error) {
	key := cache.Key{Op: "listFiles"}
	tags := []cache.Tag{{Kind: cache.KindFile}}
	return cache.Do(ctx, c.cache, key, tags, func(ctx context.Context) ([]models.File, error) {
		var resp filesResponse
		if err := c.doJSON(ctx, http.MethodGet, "/files", nil, &resp, withAuth); err != nil {
			return nil, err
		}
		return normalize.Files(resp.Files), nil
	})
}

// GetFile returns one file, cached under File:<id>.
func (c *HTTPClient) GetFile(ctx context.Context, id string) (models.File, error) {
	key := cache.Key{Op: "getFile", Arg: id}
	tags := []cache.Tag{{Kind: cache.KindFile, ID: id}}
	return cache.Do(ctx, c.cache, key, tags, func(ctx context.Context) (models.File, error) {
		var raw normalize.RawFile
		if err := c.doJSON(ctx, http.MethodGet, "/files/"+url.PathEscape(id), nil, &raw, withAuth); err != nil {
			return models.File{}, err
		}
		return normalize.File(raw), nil
	})
}

// UploadFile sends the content as a multipart body (field name "file") and
// invalidates every cached file query.
func (c *HTTPClient) UploadFile(ctx context.Context, name, contentType string, size int64, r io.Reader) (models.File, error) {
	// The validation layer caps uploads at 100 MiB, so buffering the whole
	// multipart body is acceptable.
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return models.File{}, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return models.File{}, fmt.Errorf("failed to read file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.File{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var raw normalize.RawFile
	err = c.do(ctx, http.MethodPost, "/files/upload", body, mw.FormDataContentType(), &raw, withAuth)
	if err != nil {
		return models.File{}, err
	}

	c.log.Info(ctx, "file uploaded", "name", name, "size", size)
	c.cache.Invalidate(cache.Tag{Kind: cache.KindFile})
	return normalize.File(raw), nil
}

// DeleteFile removes the file and invalidates every cached file query.
func (c *HTTPClient) DeleteFile(ctx context.Context, id string) error {
	var resp messageResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/files/"+url.PathEscape(id), nil, &resp, withAuth); err != nil {
		return err
	}

	c.log.Info(ctx, "file deleted", "id", id)
	c.cache.Invalidate(cache.Tag{Kind: cache.KindFile})
	return nil
}
