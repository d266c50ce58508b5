package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// putIf adds key to set when the client sent the field.
func putIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}

// requireChanges writes the 400 for an update body with no known fields.
func requireChanges(c *gin.Context, set bson.M) bool {
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return false
	}
	return true
}
