package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
	models "github.com/phillip/culture-events-go/models"
)

// ---------------- PARTNERS ----------------
func SubmitPartner(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name            string `json:"name"`
			Email           string `json:"email"`
			Phone           string `json:"phone"`
			Company         string `json:"company"`
			PartnershipType string `json:"partnership_type"`
			Message         string `json:"message"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p := models.Partner{
			Name:            strings.TrimSpace(input.Name),
			Email:           strings.TrimSpace(input.Email),
			Phone:           strings.TrimSpace(input.Phone),
			Company:         strings.TrimSpace(input.Company),
			PartnershipType: input.PartnershipType,
			Message:         strings.TrimSpace(input.Message),
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Partners.Create(ctx, &p); err != nil {
			respondError(c, err, "partner enquiry", "submit")
			return
		}
		logger.Log.Info("[inbox] partner enquiry received", "id", p.ID.Hex())
		c.JSON(http.StatusCreated, gin.H{"message": "Thanks for reaching out, we will get back to you soon."})
	}
}

func AdminListPartners(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		partners, err := env.Partners.List(ctx)
		if err != nil {
			respondError(c, err, "partners", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"partners": partners})
	}
}

func MarkPartner(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "partner")
		if !ok {
			return
		}
		var input struct {
			Replied *bool `json:"replied"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.Replied == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "replied is required"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Partners.SetReplied(ctx, id, *input.Replied); err != nil {
			respondError(c, err, "partner", "update")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Partner updated"})
	}
}

func DeletePartner(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "partner")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Partners.Delete(ctx, id); err != nil {
			respondError(c, err, "partner", "delete")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Partner deleted"})
	}
}

// ---------------- CONTACTS ----------------
func SubmitContact(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Phone   string `json:"phone"`
			Subject string `json:"subject"`
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msg := models.Contact{
			Name:    strings.TrimSpace(input.Name),
			Email:   strings.TrimSpace(input.Email),
			Phone:   strings.TrimSpace(input.Phone),
			Subject: strings.TrimSpace(input.Subject),
			Message: strings.TrimSpace(input.Message),
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Contacts.Create(ctx, &msg); err != nil {
			respondError(c, err, "message", "send")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Message received, thank you!"})
	}
}

func AdminListContacts(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		contacts, err := env.Contacts.List(ctx)
		if err != nil {
			respondError(c, err, "contacts", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"contacts": contacts})
	}
}

func MarkContact(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "contact")
		if !ok {
			return
		}
		var input struct {
			Read *bool `json:"read"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.Read == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read is required"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Contacts.SetRead(ctx, id, *input.Read); err != nil {
			respondError(c, err, "contact", "update")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Contact updated"})
	}
}

func DeleteContact(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "contact")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Contacts.Delete(ctx, id); err != nil {
			respondError(c, err, "contact", "delete")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
	}
}
