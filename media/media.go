// Package media stores uploaded photo files and resolves their public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Upload is one file part of a request.
type Upload struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type Store interface {
	// Put saves the upload and returns the key it was stored under.
	Put(ctx context.Context, u Upload) (string, error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// GCSStore keeps uploads in a Cloud Storage bucket. URLs are built from
// BaseURL, which defaults to the bucket's public storage.googleapis.com path.
type GCSStore struct {
	Client  *storage.Client
	Bucket  string
	BaseURL string
}

func NewGCSStore(client *storage.Client, bucket, baseURL string) *GCSStore {
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}

	return &GCSStore{
		Client:  client,
		Bucket:  bucket,
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

var _ Store = (*GCSStore)(nil)

// ObjectKey names an upload under photos/ keeping its extension.
func ObjectKey(name string) string {
	return "photos/" + uuid.NewString() + strings.ToLower(path.Ext(name))
}

func (s *GCSStore) Put(ctx context.Context, u Upload) (string, error) {
	key := ObjectKey(u.Name)

	w := s.Client.Bucket(s.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = u.ContentType

	if _, err := io.Copy(w, u.Body); err != nil {
		w.Close()
		return "", fmt.Errorf("upload %s: %w", u.Name, err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", u.Name, err)
	}

	return key, nil
}

func (s *GCSStore) URL(key string) string {
	return s.BaseURL + "/" + key
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	return s.Client.Bucket(s.Bucket).Object(key).Delete(ctx)
}
