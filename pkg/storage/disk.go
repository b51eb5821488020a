package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskRoute is the URL path under which DiskBackend objects are served.
const DiskRoute = "/uploads"

// DiskBackend writes objects below a local directory that the HTTP server
// exposes at DiskRoute.
type DiskBackend struct {
	dir     string
	baseURL string
}

func NewDiskBackend(dir, publicBaseURL string) *DiskBackend {
	return &DiskBackend{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/") + DiskRoute + "/",
	}
}

func (d *DiskBackend) Dir() string { return d.dir }

func (d *DiskBackend) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	path := filepath.Join(d.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return d.baseURL + name, nil
}

func (d *DiskBackend) Delete(_ context.Context, url string) error {
	name, ok := strings.CutPrefix(url, d.baseURL)
	if !ok || name == "" || strings.Contains(name, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(d.dir, filepath.FromSlash(name)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}
