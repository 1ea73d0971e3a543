package repository

import (
	"context"
	"io"
	"time"
)

// ObjectHandle identifies an uploaded object.
type ObjectHandle struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// ObjectStore stores binary uploads and hands out public URLs for them.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (ObjectHandle, error)
	PublicURL(handle ObjectHandle) string
	// Open streams an object by ID. The caller closes the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, ObjectHandle, error)
}
