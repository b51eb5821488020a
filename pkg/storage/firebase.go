package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
)

const gcsPublicHost = "https://storage.googleapis.com/"

// FirebaseBackend stores objects in the project's Firebase Cloud Storage
// bucket. The bucket is expected to grant public read on its objects.
type FirebaseBackend struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewFirebaseBackend(bucket *gcs.BucketHandle, bucketName string) *FirebaseBackend {
	return &FirebaseBackend{bucket: bucket, name: bucketName}
}

func (f *FirebaseBackend) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	w := f.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return f.publicURL(name), nil
}

func (f *FirebaseBackend) Delete(ctx context.Context, rawURL string) error {
	name, ok := f.objectName(rawURL)
	if !ok {
		return nil
	}
	err := f.bucket.Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (f *FirebaseBackend) publicURL(name string) string {
	return gcsPublicHost + f.name + "/" + (&url.URL{Path: name}).EscapedPath()
}

// objectName maps a URL produced by publicURL back to its object name.
func (f *FirebaseBackend) objectName(rawURL string) (string, bool) {
	escaped, ok := strings.CutPrefix(rawURL, gcsPublicHost+f.name+"/")
	if !ok || escaped == "" {
		return "", false
	}
	name, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return name, true
}
