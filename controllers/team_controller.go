package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/phillip/culture-events-go/logger"
	models "github.com/phillip/culture-events-go/models"
	store "github.com/phillip/culture-events-go/store"
)

type teamInput struct {
	Name        *string `json:"name"`
	Designation *string `json:"designation"`
	Role        *string `json:"role"`
	Image       *string `json:"image"`
	LinkedIn    *string `json:"linkedin"`
	Instagram   *string `json:"instagram"`
	Bio         *string `json:"bio"`
	City        *string `json:"city"`
	Type        *string `json:"type"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

func (in teamInput) set() bson.M {
	set := bson.M{}
	putIf(set, "name", in.Name)
	putIf(set, "designation", in.Designation)
	putIf(set, "role", in.Role)
	putIf(set, "image", in.Image)
	putIf(set, "linkedin", in.LinkedIn)
	putIf(set, "instagram", in.Instagram)
	putIf(set, "bio", in.Bio)
	putIf(set, "city", in.City)
	putIf(set, "type", in.Type)
	putIf(set, "order", in.Order)
	putIf(set, "is_active", in.IsActive)
	return set
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

// ---------------- LIST (public) ----------------
// GET /team answers four shapes: leadership only, one city, all city teams
// grouped by city, or leadership plus city teams when no type is given.
func ListTeam(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		typ := c.Query("type")
		city := strings.TrimSpace(c.Query("city"))

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		switch typ {
		case models.TeamLeadership:
			members, err := env.Team.List(ctx, store.TeamFilter{Type: models.TeamLeadership})
			if err != nil {
				respondError(c, err, "team", "fetch")
				return
			}
			c.JSON(http.StatusOK, gin.H{"members": members})

		case models.TeamCity:
			if city != "" {
				members, err := env.Team.List(ctx, store.TeamFilter{Type: models.TeamCity, City: city})
				if err != nil {
					respondError(c, err, "team", "fetch")
					return
				}
				c.JSON(http.StatusOK, gin.H{"members": members})
				return
			}
			teams, err := env.Team.CityTeams(ctx)
			if err != nil {
				respondError(c, err, "team", "fetch")
				return
			}
			c.JSON(http.StatusOK, gin.H{"city_teams": teams})

		case "":
			leadership, err := env.Team.List(ctx, store.TeamFilter{Type: models.TeamLeadership})
			if err != nil {
				respondError(c, err, "team", "fetch")
				return
			}
			teams, err := env.Team.CityTeams(ctx)
			if err != nil {
				respondError(c, err, "team", "fetch")
				return
			}
			c.JSON(http.StatusOK, gin.H{"leadership": leadership, "city_teams": teams})

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be leadership or city"})
		}
	}
}

// ---------------- LIST (admin) ----------------
func AdminListTeam(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		members, err := env.Team.List(ctx, store.TeamFilter{
			Type:            c.Query("type"),
			City:            c.Query("city"),
			IncludeInactive: true,
		})
		if err != nil {
			respondError(c, err, "team", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"members": members})
	}
}

// ---------------- CREATE ----------------
func CreateTeamMember(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input teamInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		m := models.TeamMember{
			Name:        strings.TrimSpace(deref(input.Name)),
			Designation: deref(input.Designation),
			Role:        deref(input.Role),
			Image:       deref(input.Image),
			LinkedIn:    deref(input.LinkedIn),
			Instagram:   deref(input.Instagram),
			Bio:         deref(input.Bio),
			City:        strings.TrimSpace(deref(input.City)),
			Type:        deref(input.Type),
			Order:       deref(input.Order),
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Team.Create(ctx, &m); err != nil {
			respondError(c, err, "team member", "create")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"member": m, "message": "Team member created"})
	}
}

// ---------------- UPDATE ----------------
func UpdateTeamMember(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "team member")
		if !ok {
			return
		}
		var input teamInput
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

		if err := env.Team.Update(ctx, id, set); err != nil {
			respondError(c, err, "team member", "update")
			return
		}
		m, err := env.Team.GetByID(ctx, id)
		if err != nil {
			respondError(c, err, "team member", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": m})
	}
}

// ---------------- DELETE ----------------
// Soft by default; ?hard=true removes the document.
func DeleteTeamMember(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "team member")
		if !ok {
			return
		}
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if c.Query("hard") == "true" {
			member, err := env.Team.Delete(ctx, id)
			if err != nil {
				respondError(c, err, "team member", "delete")
				return
			}
			releaseImages(ctx, env, member.Image)
			c.JSON(http.StatusOK, gin.H{"message": "Team member deleted"})
			return
		}

		if err := env.Team.Deactivate(ctx, id); err != nil {
			respondError(c, err, "team member", "deactivate")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Team member deactivated"})
	}
}

// ---------------- SEED ----------------
func SeedTeam(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		count, seeded, err := env.Team.SeedDefaults(ctx)
		if err != nil {
			respondError(c, err, "team", "seed")
			return
		}
		if !seeded {
			c.JSON(http.StatusOK, gin.H{"seeded": false, "count": count, "message": "Team already has members"})
			return
		}
		logger.Log.Info("[team] seeded default members", "count", count)
		c.JSON(http.StatusCreated, gin.H{"seeded": true, "count": count})
	}
}
