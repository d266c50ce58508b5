package controllers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	utils "github.com/phillip/culture-events-go/utils"
)

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		img.Set(x, x, color.RGBA{R: uint8(x), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func doUpload(t *testing.T, r http.Handler, folder, name string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if folder != "" {
		require.NoError(t, mw.WriteField("type", folder))
	}
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func uploadRouter(te *testEnv) *gin.Engine {
	te.Images = utils.NewLocalImageStore(te.Config.UploadDir, "/uploads")
	r := gin.New()
	r.POST("/upload", UploadImage(te.Env))
	return r
}

func TestUploadStoresSniffedImage(t *testing.T) {
	te := newTestEnv(t)
	r := uploadRouter(te)

	// the client name lies about the type; the stored extension follows the content
	w := doUpload(t, r, "gallery", "photo.jpg", pngBytes(t, 8))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	out := decode(t, w)
	filename := out["filename"].(string)
	assert.True(t, strings.HasSuffix(filename, ".png"))
	assert.Equal(t, "/uploads/gallery/"+filename, out["path"])
	assert.Equal(t, "gallery", out["type"])

	_, err := os.Stat(filepath.Join(te.Config.UploadDir, "gallery", filename))
	assert.NoError(t, err)
}

func TestUploadRejections(t *testing.T) {
	te := newTestEnv(t)
	te.Config.UploadMaxBytes = 1024
	r := uploadRouter(te)

	w := doUpload(t, r, "events", "notes.png", []byte("just some text, not an image"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doUpload(t, r, "secrets", "photo.png", pngBytes(t, 4))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doUpload(t, r, "", "photo.png", pngBytes(t, 4))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	big := append(pngBytes(t, 4), make([]byte, 2048)...)
	w = doUpload(t, r, "events", "big.png", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
