package service

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/storefront-labs/storefront-api/internal/domain"
	"github.com/storefront-labs/storefront-api/internal/imagekit"
)

// MaxImageBytes caps accepted uploads.
const MaxImageBytes = 5 << 20

// ImageHost is the CDN the upload routes proxy to.
type ImageHost interface {
	AuthParams() imagekit.AuthParams
	Upload(ctx context.Context, file io.Reader, fileName, folder string) (*imagekit.UploadResult, error)
	Delete(ctx context.Context, fileID string) error
}

// ImageUpload describes one multipart file.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Folder      string
	Body        io.Reader
}

// UploadService validates images and hands them to the CDN.
type UploadService struct {
	host          ImageHost
	defaultFolder string
}

// NewUploadService constructs the service. A nil host disables uploads.
func NewUploadService(host ImageHost, defaultFolder string) *UploadService {
	if defaultFolder == "" {
		defaultFolder = "/"
	}
	return &UploadService{host: host, defaultFolder: defaultFolder}
}

func (s *UploadService) AuthParams() (imagekit.AuthParams, error) {
	if s.host == nil {
		return imagekit.AuthParams{}, domain.ErrNotConfigured
	}
	return s.host.AuthParams(), nil
}

// UploadImage stores an image and returns its CDN location.
func (s *UploadService) UploadImage(ctx context.Context, in ImageUpload) (*imagekit.UploadResult, error) {
	if s.host == nil {
		return nil, domain.ErrNotConfigured
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return nil, domain.NewValidation("Only image files are allowed", "image")
	}
	if in.Size > MaxImageBytes {
		return nil, domain.NewValidation("Image must be 5MB or smaller", "image")
	}

	name := path.Base(strings.ReplaceAll(in.FileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	folder := strings.TrimSpace(in.Folder)
	if folder == "" {
		folder = s.defaultFolder
	}
	return s.host.Upload(ctx, in.Body, name, folder)
}

func (s *UploadService) DeleteImage(ctx context.Context, fileID string) error {
	if s.host == nil {
		return domain.ErrNotConfigured
	}
	if strings.TrimSpace(fileID) == "" {
		return domain.NewValidation("File id is required", "fileId")
	}
	return s.host.Delete(ctx, fileID)
}
