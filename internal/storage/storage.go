package storage

import (
	"context"
	"io"
)

// Service stores uploaded news images in remote object storage and hands
// back the public URL clients put in the article's image field.
type Service interface {
	UploadImage(ctx context.Context, body io.Reader, ext, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}
