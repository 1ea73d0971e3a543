package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"

	"github.com/google/uuid"
)

var _ repository.ObjectStore = (*ObjectStore)(nil)

type storedObject struct {
	handle repository.ObjectHandle
	data   []byte
}

// ObjectStore keeps uploads in memory and serves them under baseURL.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]storedObject
	baseURL string
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{objects: make(map[string]storedObject), baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *ObjectStore) Upload(ctx context.Context, path, contentType string, data []byte) (repository.ObjectHandle, error) {
	if err := ctx.Err(); err != nil {
		return repository.ObjectHandle{}, err
	}
	handle := repository.ObjectHandle{
		ID:          uuid.NewString(),
		Path:        path,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}
	s.mu.Lock()
	s.objects[handle.ID] = storedObject{handle: handle, data: append([]byte(nil), data...)}
	s.mu.Unlock()
	return handle, nil
}

func (s *ObjectStore) PublicURL(handle repository.ObjectHandle) string {
	return fmt.Sprintf("%s/%s", s.baseURL, handle.ID)
}

func (s *ObjectStore) Open(ctx context.Context, id string) (io.ReadCloser, repository.ObjectHandle, error) {
	s.mu.RLock()
	obj, ok := s.objects[id]
	s.mu.RUnlock()
	if !ok {
		return nil, repository.ObjectHandle{}, fmt.Errorf("object %s: %w", id, errors.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.handle, nil
}
