package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/phillip/culture-events-go/logger"
)

// uploadTypes are the folders an upload may be filed under.
var uploadTypes = map[string]bool{
	"events":   true,
	"team":     true,
	"gallery":  true,
	"brands":   true,
	"partners": true,
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// multipartOverhead leaves room for the form fields around the file.
const multipartOverhead = 64 << 10

// ---------------- UPLOAD ----------------
func UploadImage(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		maxBytes := env.Config.UploadMaxBytes
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", maxBytes)})
			return
		}

		folder := c.PostForm("type")
		if !uploadTypes[folder] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be one of events, team, gallery, brands, partners"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
			return
		}
		defer file.Close()

		// --- Sniff content ---
		mtype, err := mimetype.DetectReader(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
			return
		}
		ext, ok := imageExtensions[mtype.String()]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only JPEG, PNG, WebP and GIF images are allowed"})
			return
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return
		}

		filename := uuid.NewString() + ext

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		url, err := env.Images.Save(ctx, folder, filename, file)
		if err != nil {
			logger.Log.Error("[upload] save failed", "type", folder, "file", fileHeader.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}

		logger.Log.Info("[upload] stored image", "type", folder, "path", url, "size", fileHeader.Size)
		c.JSON(http.StatusCreated, gin.H{
			"path":     url,
			"filename": filename,
			"size":     fileHeader.Size,
			"type":     folder,
		})
	}
}

// releaseImages removes stored images once the record pointing at them is
// gone. Failures are logged; the record deletion stands.
func releaseImages(ctx context.Context, env *Env, urls ...string) {
	if env.Images == nil {
		return
	}
	seen := map[string]bool{}
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		if err := env.Images.Delete(ctx, u); err != nil {
			logger.Log.Warn("[upload] could not delete stored image", "url", u, "error", err)
		}
	}
}
