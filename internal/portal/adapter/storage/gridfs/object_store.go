package gridfs

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repository.ObjectStore = (*ObjectStore)(nil)

// ObjectStore keeps uploads in a GridFS bucket of the portal database and
// serves them from baseURL/{id}.
type ObjectStore struct {
	db      *mongo.Database
	bucket  string
	baseURL string
	logger  logger.Logger
}

func NewObjectStore(db *mongo.Database, bucket, baseURL string, log logger.Logger) *ObjectStore {
	if bucket == "" {
		bucket = "uploads"
	}
	return &ObjectStore{
		db:      db,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithComponent("gridfs"),
	}
}

type fileMetadata struct {
	ContentType string `bson:"contentType"`
}

// open returns a bucket bounded by ctx's deadline. Buckets carry per-call deadlines,
// so each call gets its own.
func (s *ObjectStore) open(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(s.bucket))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
		if err := b.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *ObjectStore) Upload(ctx context.Context, path, contentType string, data []byte) (repository.ObjectHandle, error) {
	if err := ctx.Err(); err != nil {
		return repository.ObjectHandle{}, err
	}
	b, err := s.open(ctx)
	if err != nil {
		return repository.ObjectHandle{}, fmt.Errorf("open bucket: %w", err)
	}
	opts := options.GridFSUpload().SetMetadata(fileMetadata{ContentType: contentType})
	id, err := b.UploadFromStream(path, bytes.NewReader(data), opts)
	if err != nil {
		s.logger.WithContext(ctx).Errorf("upload %s failed: %v", path, err)
		return repository.ObjectHandle{}, fmt.Errorf("upload %s: %w", path, err)
	}
	return repository.ObjectHandle{
		ID:          id.Hex(),
		Path:        path,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (s *ObjectStore) PublicURL(handle repository.ObjectHandle) string {
	return s.baseURL + "/" + handle.ID
}

func (s *ObjectStore) Open(ctx context.Context, id string) (io.ReadCloser, repository.ObjectHandle, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ObjectHandle{}, fmt.Errorf("file %s: %w", id, errors.ErrNotFound)
	}
	b, err := s.open(ctx)
	if err != nil {
		return nil, repository.ObjectHandle{}, fmt.Errorf("open bucket: %w", err)
	}
	stream, err := b.OpenDownloadStream(oid)
	if err != nil {
		if stderrors.Is(err, gridfs.ErrFileNotFound) {
			return nil, repository.ObjectHandle{}, fmt.Errorf("file %s: %w", id, errors.ErrNotFound)
		}
		return nil, repository.ObjectHandle{}, fmt.Errorf("open file %s: %w", id, err)
	}

	file := stream.GetFile()
	handle := repository.ObjectHandle{
		ID:         id,
		Path:       file.Name,
		Size:       file.Length,
		UploadedAt: file.UploadDate.UTC(),
	}
	var meta fileMetadata
	if len(file.Metadata) > 0 && bson.Unmarshal(file.Metadata, &meta) == nil {
		handle.ContentType = meta.ContentType
	}
	if handle.ContentType == "" {
		handle.ContentType = "application/octet-stream"
	}
	return stream, handle, nil
}
