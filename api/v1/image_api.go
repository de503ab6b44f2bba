package v1

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"palette/internal/color"
	"palette/internal/metrics"
)

// MaxUploadBytes caps uploaded image size (10 MB).
const MaxUploadBytes = 10 * 1024 * 1024

// ImageAPI handles image uploads and dominant-color extraction.
type ImageAPI struct {
	uploadDir string
}

func NewImageAPI(uploadDir string) *ImageAPI {
	return &ImageAPI{uploadDir: uploadDir}
}

// Upload accepts a multipart image under field "file", stores it and
// responds with the dominant color as an [r, g, b] triple. The stored name
// is a fresh UUID plus the original extension, so client-supplied names
// never touch the filesystem.
func (a *ImageAPI) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		metrics.IncUpload("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if file.Size > MaxUploadBytes {
		metrics.IncUpload("too_large")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		metrics.IncUpload("internal_error")
		slog.Error("open uploaded file failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxUploadBytes+1))
	if err != nil {
		metrics.IncUpload("internal_error")
		slog.Error("read uploaded file failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	dominant, err := color.Dominant(data, color.DefaultQuality)
	if err != nil {
		metrics.IncUpload("undecodable")
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	name := uuid.NewString() + filepath.Ext(filepath.Base(file.Filename))
	dest := filepath.Join(a.uploadDir, name)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		metrics.IncUpload("internal_error")
		slog.Error("store uploaded file failed", "error", err, "path", dest)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics.IncUpload("success")
	c.JSON(http.StatusOK, gin.H{
		"dominant_color": [3]uint8{dominant.R, dominant.G, dominant.B},
		"file":           name,
	})
}
