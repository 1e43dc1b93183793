package media

import (
	"context"
	"fmt"
	"io"

	"circle/internal/observability"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore implements Store against the Cloudinary upload API.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from a cloudinary:// URL
// (cloudinary://<api_key>:<api_secret>@<cloud_name>).
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores the content under the given folder and returns the public
// URL, the original file name and the public ID used for later deletion.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, folder, fileName string) (*UploadResult, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: folder})
	if err != nil {
		observability.MediaOperations.WithLabelValues("upload", "error").Inc()
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		observability.MediaOperations.WithLabelValues("upload", "error").Inc()
		return nil, fmt.Errorf("cloudinary upload failed: %s", resp.Error.Message)
	}

	observability.MediaOperations.WithLabelValues("upload", "ok").Inc()
	return &UploadResult{
		URL:      resp.SecureURL,
		FileName: fileName,
		PublicID: resp.PublicID,
	}, nil
}

// Destroy removes a previously uploaded object by its public ID.
func (s *CloudinaryStore) Destroy(ctx context.Context, publicID string) error {
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		observability.MediaOperations.WithLabelValues("destroy", "error").Inc()
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		observability.MediaOperations.WithLabelValues("destroy", "error").Inc()
		return fmt.Errorf("cloudinary destroy failed: %s", resp.Result)
	}

	observability.MediaOperations.WithLabelValues("destroy", "ok").Inc()
	return nil
}
