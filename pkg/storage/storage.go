// Package storage persists post and profile images and hands back stable
// public URLs for them.
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageBytes bounds a single stored image.
const MaxImageBytes = 10 << 20

var (
	ErrUnsupportedSource = errors.New("image source must be a data URL or an http(s) URL")
	ErrNotImage          = errors.New("uploaded content is not an image")
	ErrTooLarge          = errors.New("image exceeds the size limit")
	ErrFetch             = errors.New("remote image could not be fetched")
)

// Backend is an object store addressed by object name.
type Backend interface {
	// Put stores data under name and returns its public URL.
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Delete removes the object behind url. URLs the backend does not own and
	// objects that are already gone are not errors.
	Delete(ctx context.Context, url string) error
}

// ImageStore validates images and writes them to a Backend.
type ImageStore struct {
	backend Backend
	client  *http.Client
	prefix  string
}

func NewImageStore(backend Backend) *ImageStore {
	return &ImageStore{
		backend: backend,
		client:  newFetchClient(false),
		prefix:  "dreams/",
	}
}

// Image is image content that passed validation and can be stored.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Inspect checks that data is an image within MaxImageBytes.
func Inspect(data []byte) (*Image, error) {
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return &Image{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

// Load resolves source into a validated image without storing it. source is
// either a base64 data URL (what the image generator returns to the client)
// or a remote http(s) URL on a public address.
func (s *ImageStore) Load(ctx context.Context, source string) (*Image, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(source, "data:"):
		data, err = decodeDataURL(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		data, err = s.fetch(ctx, source)
	default:
		return nil, ErrUnsupportedSource
	}
	if err != nil {
		return nil, err
	}
	return Inspect(data)
}

// Put stores img under a fresh object name and returns its public URL.
func (s *ImageStore) Put(ctx context.Context, img *Image) (string, error) {
	name := s.prefix + uuid.NewString() + img.Extension
	return s.backend.Put(ctx, name, img.Data, img.ContentType)
}

// UploadBytes validates and stores raw image bytes.
func (s *ImageStore) UploadBytes(ctx context.Context, data []byte) (string, error) {
	img, err := Inspect(data)
	if err != nil {
		return "", err
	}
	return s.Put(ctx, img)
}

// Delete removes a previously stored image.
func (s *ImageStore) Delete(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	return s.backend.Delete(ctx, url)
}

func decodeDataURL(source string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(source, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL must be base64 encoded", ErrUnsupportedSource)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	return data, nil
}

func (s *ImageStore) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, MaxImageBytes+1)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return buf.Bytes(), nil
}
