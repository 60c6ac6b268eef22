// Package storage saves uploaded images under the public directory.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrUnsupportedType = errors.New("only JPEG, PNG, WebP and GIF images are allowed")
	ErrInvalidKind     = errors.New("unknown upload kind")
)

const (
	KindProducts   = "products"
	KindCategories = "categories"
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Uploader writes files to <publicDir>/uploads/<kind>/ and hands out URLs
// under <baseURL>/uploads/.
type Uploader struct {
	publicDir string
	baseURL   string
	maxBytes  int64
}

func NewUploader(publicDir, baseURL string, maxBytes int64) *Uploader {
	return &Uploader{
		publicDir: publicDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
		maxBytes:  maxBytes,
	}
}

// Root is the directory served at /uploads.
func (u *Uploader) Root() string {
	return filepath.Join(u.publicDir, "uploads")
}

// SaveFileHeader stores a multipart upload.
func (u *Uploader) SaveFileHeader(kind string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxBytes {
		return "", ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()
	return u.Save(kind, f)
}

// Save sniffs the content type from the bytes, then writes the file under a
// random name with the detected extension. It returns the public URL.
func (u *Uploader) Save(kind string, r io.Reader) (string, error) {
	// 1. Check the kind
	if kind != KindProducts && kind != KindCategories {
		return "", ErrInvalidKind
	}

	// 2. Read at most maxBytes+1 to detect oversize files
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > u.maxBytes {
		return "", ErrFileTooLarge
	}

	// 3. Sniff the type
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return "", ErrUnsupportedType
	}

	// 4. Create the directory if it doesn't exist
	dir := filepath.Join(u.Root(), kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	// 5. Write the file (uuid + extension)
	name := uuid.NewString() + mt.Extension()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s", u.baseURL, kind, name), nil
}

// localPath maps a URL handed out by Save back to its file. It reports false
// for anything that is not a local upload.
func (u *Uploader) localPath(url string) (string, bool) {
	rel, ok := strings.CutPrefix(url, u.baseURL+"/uploads/")
	if !ok {
		rel, ok = strings.CutPrefix(url, "/uploads/")
	}
	if !ok {
		return "", false
	}

	rel = path.Clean("/" + rel)[1:]
	if rel == "" || strings.Contains(rel, "..") {
		return "", false
	}
	return filepath.Join(u.Root(), filepath.FromSlash(rel)), true
}

// Delete removes a previously uploaded file. URLs that point elsewhere and
// files that are already gone are ignored.
func (u *Uploader) Delete(url string) error {
	p, ok := u.localPath(url)
	if !ok {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete upload: %w", err)
	}
	return nil
}
