package v1

import (
	"bytes"
	"encoding/json"
	"image"
	gocolor "image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImageRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	uploadDir := t.TempDir()
	r := gin.New()
	r.POST("/api/v1/upload", NewImageAPI(uploadDir).Upload)
	return r, uploadDir
}

func multipartImage(t *testing.T, field, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func redPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, gocolor.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUpload(t *testing.T) {
	r, uploadDir := setupImageRouter(t)

	body, contentType := multipartImage(t, "file", "red.png", redPNG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		DominantColor [3]uint8 `json:"dominant_color"`
		File          string   `json:"file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, [3]uint8{200, 30, 30}, resp.DominantColor)

	// The stored name keeps the extension but not the client-supplied name.
	assert.NotEqual(t, "red.png", resp.File)
	assert.Equal(t, ".png", filepath.Ext(resp.File))
	_, err := os.Stat(filepath.Join(uploadDir, resp.File))
	assert.NoError(t, err)
}

func TestUpload_MissingFile(t *testing.T) {
	r, _ := setupImageRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_UndecodablePayload(t *testing.T) {
	r, _ := setupImageRouter(t)

	body, contentType := multipartImage(t, "file", "junk.png", []byte("definitely not an image"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
