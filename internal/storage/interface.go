package storage

import (
	"context"
	"io"
)

// ImageStore persists uploaded sample photographs. Grading does not
// depend on the stored bytes; the store is evidence retention only.
type ImageStore interface {
	Upload(ctx context.Context, key string, data io.Reader) error
	Delete(ctx context.Context, key string) error
}
