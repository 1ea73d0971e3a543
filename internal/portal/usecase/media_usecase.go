package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"consultancy-portal/internal/portal/domain/model"
	"consultancy-portal/internal/portal/domain/repository"
	"consultancy-portal/internal/shared/errors"
	"consultancy-portal/internal/shared/logger"

	"github.com/google/uuid"
)

// MediaConfig bounds uploads.
type MediaConfig struct {
	// InlineImageLimit caps legacy base64 data URLs, in bytes after decoding.
	InlineImageLimit int
	// MaxUploadBytes caps multipart uploads.
	MaxUploadBytes int
}

// MediaUsecaseInterface stores uploads and turns every image field into an object-store URL.
type MediaUsecaseInterface interface {
	Upload(ctx context.Context, prefix string, file FileUpload) (*UploadResult, error)
	Open(ctx context.Context, id string) (io.ReadCloser, repository.ObjectHandle, error)
	NormalizeImages(ctx context.Context, listing model.Listing, fields map[string]interface{}, files []FileUpload) (map[string]interface{}, error)
}

type MediaUsecase struct {
	objects repository.ObjectStore
	cfg     MediaConfig
	logger  logger.Logger
}

func NewMediaUsecase(objects repository.ObjectStore, cfg MediaConfig, log logger.Logger) *MediaUsecase {
	if cfg.InlineImageLimit <= 0 {
		cfg.InlineImageLimit = 750 * 1024
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 * 1024 * 1024
	}
	return &MediaUsecase{objects: objects, cfg: cfg, logger: log.WithComponent("media")}
}

// Upload stores an image under prefix and returns its public URL.
func (uc *MediaUsecase) Upload(ctx context.Context, prefix string, file FileUpload) (*UploadResult, error) {
	if len(file.Data) == 0 {
		return nil, errors.NewValidationError("file is empty")
	}
	if len(file.Data) > uc.cfg.MaxUploadBytes {
		return nil, errors.NewValidationError(fmt.Sprintf("file exceeds %d bytes", uc.cfg.MaxUploadBytes))
	}
	contentType := imageContentType(file.ContentType, file.Filename, file.Data)
	if contentType == "" {
		return nil, errors.NewValidationError("only image uploads are accepted").WithDetail("filename", file.Filename)
	}
	return uc.store(ctx, prefix, file.Filename, contentType, file.Data)
}

func (uc *MediaUsecase) Open(ctx context.Context, id string) (io.ReadCloser, repository.ObjectHandle, error) {
	rc, handle, err := uc.objects.Open(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, handle, errors.NewNotFoundError("file " + id).WithCause(err)
		}
		return nil, handle, errors.WrapError(err, "failed to open file")
	}
	return rc, handle, nil
}

// NormalizeImages returns a copy of fields where each image field holds an object-store URL.
// Uploaded files win over field values. Inline data URLs are accepted up to the inline limit.
func (uc *MediaUsecase) NormalizeImages(ctx context.Context, listing model.Listing, fields map[string]interface{}, files []FileUpload) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields)+len(files))
	for k, v := range fields {
		out[k] = v
	}
	prefix := listing.Name

	for _, f := range files {
		if !listing.IsImageField(f.Field) {
			return nil, errors.NewValidationError(fmt.Sprintf("%s is not an image field of %s", f.Field, listing.Name))
		}
		res, err := uc.Upload(ctx, path.Join(prefix, f.Field), f)
		if err != nil {
			return nil, err
		}
		out[f.Field] = res.URL
	}

	for _, field := range listing.ImageFields {
		raw, ok := fields[field]
		if !ok || hasFile(files, field) {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			return nil, errors.NewValidationError(field + " must be a URL string")
		}
		switch {
		case value == "", isHTTPURL(value):
			out[field] = value
		case strings.HasPrefix(value, "data:"):
			url, err := uc.storeDataURL(ctx, path.Join(prefix, field), value)
			if err != nil {
				return nil, err
			}
			out[field] = url
		default:
			return nil, errors.NewValidationError(field + " must be an http(s) URL or an image file")
		}
	}
	return out, nil
}

// storeDataURL uploads a legacy base64 data URL and returns its object-store URL.
func (uc *MediaUsecase) storeDataURL(ctx context.Context, prefix, dataURL string) (string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(dataURL, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", errors.NewValidationError("inline image must be a base64 data URL")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > uc.cfg.InlineImageLimit+2 {
		return "", errors.NewValidationError(fmt.Sprintf("inline image exceeds %d bytes", uc.cfg.InlineImageLimit))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errors.NewValidationError("inline image is not valid base64").WithCause(err)
	}
	if len(data) > uc.cfg.InlineImageLimit {
		return "", errors.NewValidationError(fmt.Sprintf("inline image exceeds %d bytes", uc.cfg.InlineImageLimit))
	}
	contentType := imageContentType(strings.TrimSuffix(meta, ";base64"), "", data)
	if contentType == "" {
		return "", errors.NewValidationError("inline data is not an image")
	}
	res, err := uc.store(ctx, prefix, "", contentType, data)
	if err != nil {
		return "", err
	}
	uc.logger.WithContext(ctx).Infof("migrated inline image to %s", res.URL)
	return res.URL, nil
}

func (uc *MediaUsecase) store(ctx context.Context, prefix, filename, contentType string, data []byte) (*UploadResult, error) {
	name := uuid.NewString()
	if ext := extensionFor(filename, contentType); ext != "" {
		name += ext
	}
	handle, err := uc.objects.Upload(ctx, path.Join(prefix, name), contentType, data)
	if err != nil {
		uc.logger.WithContext(ctx).Errorf("upload %s failed: %v", prefix, err)
		return nil, errors.NewTransientError("failed to store file").WithCause(err)
	}
	return &UploadResult{
		ID:          handle.ID,
		URL:         uc.objects.PublicURL(handle),
		ContentType: handle.ContentType,
		Size:        handle.Size,
	}, nil
}

func hasFile(files []FileUpload, field string) bool {
	for _, f := range files {
		if f.Field == field {
			return true
		}
	}
	return false
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// imageContentType returns the image MIME type of the payload, or "" when it is not an image.
func imageContentType(declared, filename string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	// svg is text to the sniffer
	declared = strings.TrimSpace(strings.ToLower(declared))
	if declared == "" && filename != "" {
		declared = mime.TypeByExtension(path.Ext(filename))
	}
	if strings.HasPrefix(declared, "image/svg") {
		return "image/svg+xml"
	}
	return ""
}

func extensionFor(filename, contentType string) string {
	if ext := path.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}
