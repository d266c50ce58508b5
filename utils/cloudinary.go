package utils

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryImageStore keeps images on Cloudinary, one folder per upload type.
type CloudinaryImageStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryImageStore(cloudName, apiKey, apiSecret string) (*CloudinaryImageStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &CloudinaryImageStore{cld: cld}, nil
}

func (s *CloudinaryImageStore) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   folder,
		PublicID: strings.TrimSuffix(filename, path.Ext(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete destroys an image this store uploaded. URLs hosted elsewhere are
// left alone.
func (s *CloudinaryImageStore) Delete(ctx context.Context, imageURL string) error {
	if !isCloudinaryURL(imageURL) {
		return nil
	}
	publicID, err := extractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

func isCloudinaryURL(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "cloudinary.com" || strings.HasSuffix(host, ".cloudinary.com")
}

// extractPublicID turns
// https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg
// into events/abc123.
func extractPublicID(imageURL string) (string, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	_, rest, ok := strings.Cut(parsedURL.Path, "/upload/")
	if !ok || rest == "" {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	parts := strings.Split(rest, "/")
	if versionSegment.MatchString(parts[0]) {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	joined := path.Join(parts...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
