package storage

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestSave_AcceptsPNG(t *testing.T) {
	dir := t.TempDir()
	u := NewUploader(dir, "http://localhost:8080/", 1<<20)

	url, err := u.Save(KindProducts, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/products/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := filepath.Base(url)
	_, err = os.Stat(filepath.Join(dir, "uploads", "products", name))
	assert.NoError(t, err)
}

func TestSave_RejectsNonImage(t *testing.T) {
	u := NewUploader(t.TempDir(), "http://localhost:8080", 1<<20)

	_, err := u.Save(KindProducts, strings.NewReader("#!/bin/sh\necho hi\n"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSave_RejectsOversize(t *testing.T) {
	data := pngBytes(t)
	u := NewUploader(t.TempDir(), "http://localhost:8080", int64(len(data)-1))

	_, err := u.Save(KindProducts, bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSave_RejectsEmptyAndUnknownKind(t *testing.T) {
	u := NewUploader(t.TempDir(), "http://localhost:8080", 1<<20)

	_, err := u.Save(KindCategories, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = u.Save("../etc", bytes.NewReader(pngBytes(t)))
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	u := NewUploader(dir, "http://localhost:8080", 1<<20)

	url, err := u.Save(KindCategories, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	require.NoError(t, u.Delete(url))
	_, err = os.Stat(filepath.Join(dir, "uploads", "categories", filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))

	// Gone already, foreign and traversal URLs are all no-ops.
	assert.NoError(t, u.Delete(url))
	assert.NoError(t, u.Delete("https://cdn.example.com/a.png"))
	assert.NoError(t, u.Delete("/uploads/../../secret"))
}
