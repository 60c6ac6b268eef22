package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/antiquenepal/storefront/internal/storage"
	"github.com/gin-gonic/gin"
)

// saveUpload stores fh and writes the error response itself when it fails.
func (h *Handlers) saveUpload(c *gin.Context, kind string, fh *multipart.FileHeader) (string, bool) {
	url, err := h.Uploads.SaveFileHeader(kind, fh)
	switch {
	case err == nil:
		return url, true
	case errors.Is(err, storage.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrEmptyFile), errors.Is(err, storage.ErrInvalidKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.Log.ErrorContext(c.Request.Context(), "failed to save upload", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
	}
	return "", false
}

// removeUpload deletes a local upload. Failures only leave an orphan file.
func (h *Handlers) removeUpload(c *gin.Context, url string) {
	if url == "" {
		return
	}
	if err := h.Uploads.Delete(url); err != nil {
		h.Log.WarnContext(c.Request.Context(), "failed to delete uploaded file", "url", url, "error", err)
	}
}

// UploadImage handles POST /v1/admin/uploads
// It stores one image under the requested kind and returns its URL.
func (h *Handlers) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	// 2. Save it under the kind's folder
	kind := c.DefaultPostForm("kind", storage.KindProducts)
	url, ok := h.saveUpload(c, kind, file)
	if !ok {
		return
	}

	// 3. Return the public URL
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
