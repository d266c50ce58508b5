package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	models "github.com/phillip/culture-events-go/models"
)

type brandInput struct {
	Name       *string `json:"name"`
	LogoURL    *string `json:"logo_url"`
	WebsiteURL *string `json:"website_url"`
	Order      *int    `json:"order"`
	Active     *bool   `json:"active"`
}

func (in brandInput) set() bson.M {
	set := bson.M{}
	putIf(set, "name", in.Name)
	putIf(set, "logo_url", in.LogoURL)
	putIf(set, "website_url", in.WebsiteURL)
	putIf(set, "order", in.Order)
	putIf(set, "active", in.Active)
	return set
}

type galleryInput struct {
	ImageURL *string `json:"image_url"`
	Caption  *string `json:"caption"`
	Order    *int    `json:"order"`
	Active   *bool   `json:"active"`
}

func (in galleryInput) set() bson.M {
	set := bson.M{}
	putIf(set, "image_url", in.ImageURL)
	putIf(set, "caption", in.Caption)
	putIf(set, "order", in.Order)
	putIf(set, "active", in.Active)
	return set
}

// activeOrDefault treats a missing flag as active.
func activeOrDefault(v *bool) bool {
	return v == nil || *v
}

// ---------------- BRANDS ----------------
func listBrands(env *Env, activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		brands, err := env.Brands.List(ctx, activeOnly)
		if err != nil {
			respondError(c, err, "brands", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"brands": brands})
	}
}

func ListBrands(env *Env) gin.HandlerFunc      { return listBrands(env, true) }
func AdminListBrands(env *Env) gin.HandlerFunc { return listBrands(env, false) }

func CreateBrand(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input brandInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		b := models.Brand{
			Name:       strings.TrimSpace(deref(input.Name)),
			LogoURL:    strings.TrimSpace(deref(input.LogoURL)),
			WebsiteURL: deref(input.WebsiteURL),
			Order:      deref(input.Order),
			Active:     activeOrDefault(input.Active),
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Brands.Create(ctx, &b); err != nil {
			respondError(c, err, "brand", "create")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"brand": b})
	}
}

func UpdateBrand(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "brand")
		if !ok {
			return
		}
		var input brandInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		set := input.set()
		if !requireChanges(c, set) {
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Brands.Update(ctx, id, set); err != nil {
			respondError(c, err, "brand", "update")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Brand updated"})
	}
}

func DeleteBrand(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "brand")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		brand, err := env.Brands.Delete(ctx, id)
		if err != nil {
			respondError(c, err, "brand", "delete")
			return
		}
		releaseImages(ctx, env, brand.LogoURL)
		c.JSON(http.StatusOK, gin.H{"message": "Brand deleted"})
	}
}

// ---------------- GALLERY ----------------
func listGallery(env *Env, activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		photos, err := env.Gallery.List(ctx, activeOnly)
		if err != nil {
			respondError(c, err, "gallery", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"photos": photos})
	}
}

func ListGallery(env *Env) gin.HandlerFunc      { return listGallery(env, true) }
func AdminListGallery(env *Env) gin.HandlerFunc { return listGallery(env, false) }

func CreateGalleryPhoto(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input galleryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p := models.GalleryPhoto{
			ImageURL: strings.TrimSpace(deref(input.ImageURL)),
			Caption:  deref(input.Caption),
			Order:    deref(input.Order),
			Active:   activeOrDefault(input.Active),
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Gallery.Create(ctx, &p); err != nil {
			respondError(c, err, "gallery photo", "create")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"photo": p})
	}
}

func UpdateGalleryPhoto(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery photo")
		if !ok {
			return
		}
		var input galleryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		set := input.set()
		if !requireChanges(c, set) {
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Gallery.Update(ctx, id, set); err != nil {
			respondError(c, err, "gallery photo", "update")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Gallery photo updated"})
	}
}

func DeleteGalleryPhoto(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "gallery photo")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		photo, err := env.Gallery.Delete(ctx, id)
		if err != nil {
			respondError(c, err, "gallery photo", "delete")
			return
		}
		releaseImages(ctx, env, photo.ImageURL)
		c.JSON(http.StatusOK, gin.H{"message": "Gallery photo deleted"})
	}
}
