package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/culture-events-go/models"
	store "github.com/phillip/culture-events-go/store"
)

type themeInput struct {
	Name          *string `json:"name"`
	CoverImageURL *string `json:"cover_image_url"`
	Description   *string `json:"description"`
	Order         *int    `json:"order"`
	Status        *string `json:"status"`
}

// ---------------- LIST (public) ----------------
func ListThemes(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		themes, err := env.Themes.List(ctx, true)
		if err != nil {
			respondError(c, err, "gallery themes", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"themes": themes})
	}
}

// ---------------- GET (public) ----------------
func GetTheme(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		theme, err := env.Themes.GetBySlug(ctx, c.Param("slug"), true)
		if err != nil {
			respondError(c, err, "gallery theme", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"theme": theme})
	}
}

// ---------------- LIST (admin) ----------------
func AdminListThemes(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		themes, err := env.Themes.List(ctx, false)
		if err != nil {
			respondError(c, err, "gallery themes", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"themes": themes})
	}
}

// ---------------- CREATE ----------------
func CreateTheme(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input themeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t := models.GalleryTheme{
			Name:          strings.TrimSpace(deref(input.Name)),
			CoverImageURL: deref(input.CoverImageURL),
			Description:   deref(input.Description),
			Order:         deref(input.Order),
			Status:        deref(input.Status),
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Themes.Create(ctx, &t); err != nil {
			respondError(c, err, "gallery theme", "create")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"theme": t})
	}
}

// ---------------- UPDATE ----------------
func UpdateTheme(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery theme")
		if !ok {
			return
		}
		var input themeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		patch := store.ThemePatch(input)

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Themes.Update(ctx, id, patch); err != nil {
			respondError(c, err, "gallery theme", "update")
			return
		}
		theme, err := env.Themes.GetByID(ctx, id)
		if err != nil {
			respondError(c, err, "gallery theme", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"theme": theme})
	}
}

// ---------------- DELETE ----------------
func DeleteTheme(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery theme")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		theme, err := env.Themes.Delete(ctx, id)
		if err != nil {
			respondError(c, err, "gallery theme", "delete")
			return
		}
		urls := []string{theme.CoverImageURL}
		for _, p := range theme.Photos {
			urls = append(urls, p.ImageURL)
		}
		releaseImages(ctx, env, urls...)
		c.JSON(http.StatusOK, gin.H{"message": "Gallery theme and its photos deleted"})
	}
}

// ---------------- PHOTOS ----------------
func ListThemePhotos(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery theme")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		photos, err := env.Themes.ListPhotos(ctx, id)
		if err != nil {
			respondError(c, err, "theme photos", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"photos": photos})
	}
}

func AddThemePhotos(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery theme")
		if !ok {
			return
		}
		var input struct {
			Photos []struct {
				ImageURL string `json:"image_url"`
				Caption  string `json:"caption"`
			} `json:"photos"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		photos := make([]models.ThemePhoto, len(input.Photos))
		for i, p := range input.Photos {
			photos[i] = models.ThemePhoto{ImageURL: strings.TrimSpace(p.ImageURL), Caption: p.Caption}
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		added, err := env.Themes.AddPhotos(ctx, id, photos)
		if err != nil {
			respondError(c, err, "gallery theme", "add photos to")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"photos": added})
	}
}

func ReorderThemePhotos(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery theme")
		if !ok {
			return
		}
		var input struct {
			PhotoIDs []string `json:"photo_ids"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ids := make([]primitive.ObjectID, 0, len(input.PhotoIDs))
		for _, raw := range input.PhotoIDs {
			pid, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id " + raw})
				return
			}
			ids = append(ids, pid)
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		if err := env.Themes.Reorder(ctx, id, ids); err != nil {
			respondError(c, err, "theme photos", "reorder")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Photos reordered"})
	}
}

func SetThemeCover(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "photo")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		photo, err := env.Themes.SetCover(ctx, id)
		if err != nil {
			respondError(c, err, "photo", "set cover")
			return
		}
		c.JSON(http.StatusOK, gin.H{"photo": photo})
	}
}

func DeleteThemePhoto(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "photo")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		photo, err := env.Themes.DeletePhoto(ctx, id)
		if err != nil {
			respondError(c, err, "photo", "delete")
			return
		}
		releaseImages(ctx, env, photo.ImageURL)
		c.JSON(http.StatusOK, gin.H{"message": "Photo deleted"})
	}
}
