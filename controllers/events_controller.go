package controllers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/phillip/culture-events-go/logger"
	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	store "github.com/phillip/culture-events-go/store"
	utils "github.com/phillip/culture-events-go/utils"
)

// eventInput is the JSON body of admin create/update. Dates are strings so
// the handler can accept both RFC3339 instants and the legacy date/time pair.
type eventInput struct {
	Title           *string                 `json:"title"`
	Slug            *string                 `json:"slug"`
	Category        *string                 `json:"category"`
	City            *string                 `json:"city"`
	Venue           *string                 `json:"venue"`
	VenueAddress    *string                 `json:"venue_address"`
	GoogleMapsURL   *string                 `json:"google_maps_url"`
	Description     *string                 `json:"description"`
	LongDescription *string                 `json:"long_description"`
	Poster          *string                 `json:"poster"`
	CoverImageURL   *string                 `json:"cover_image_url"`
	Rules           *[]string               `json:"rules"`
	Schedule        *[]models.ScheduleItem  `json:"schedule"`
	FAQs            *[]models.FAQ           `json:"faqs"`
	TicketTypes     *[]models.TicketType    `json:"ticket_types"`
	TicketPlatforms *models.TicketPlatforms `json:"ticket_platforms"`
	Capacity        *int                    `json:"capacity"`
	Featured        *bool                   `json:"featured"`
	Brand           *string                 `json:"brand"`
	Tags            *[]string               `json:"tags"`
	Status          *string                 `json:"status"`
	StatusOverride  *string                 `json:"status_override"`

	StartDateTime *string `json:"start_date_time"`
	EndDateTime   *string `json:"end_date_time"` // "" clears the end
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	EndTime       *string `json:"end_time"`
}

func (in eventInput) patch() (store.EventPatch, error) {
	p := store.EventPatch{
		Title: in.Title, Slug: in.Slug, Category: in.Category, City: in.City,
		Venue: in.Venue, VenueAddress: in.VenueAddress, GoogleMapsURL: in.GoogleMapsURL,
		Description: in.Description, LongDescription: in.LongDescription,
		Poster: in.Poster, CoverImageURL: in.CoverImageURL,
		Rules: in.Rules, Schedule: in.Schedule, FAQs: in.FAQs,
		TicketTypes: in.TicketTypes, TicketPlatforms: in.TicketPlatforms,
		Capacity: in.Capacity, Featured: in.Featured, Brand: in.Brand, Tags: in.Tags,
		Status: in.Status,
	}

	if in.StatusOverride != nil {
		o, err := models.ParseStatusOverride(*in.StatusOverride)
		if err != nil {
			return p, status.Invalid("%s", err.Error())
		}
		p.StatusOverride = &o
	}

	// --- Start: canonical instant wins over the legacy pair ---
	switch {
	case in.StartDateTime != nil && *in.StartDateTime != "":
		start, err := utils.ParseFlexibleTime(*in.StartDateTime)
		if err != nil {
			return p, status.Invalid("start_date_time: %s", err.Error())
		}
		p.StartDateTime = &start
	case in.Date != nil && *in.Date != "":
		clock := ""
		if in.Time != nil {
			clock = *in.Time
		}
		start, err := utils.CombineDateAndClock(*in.Date, clock)
		if err != nil {
			return p, status.Invalid("date/time: %s", err.Error())
		}
		p.StartDateTime = &start
	}

	// --- End ---
	switch {
	case in.EndDateTime != nil && *in.EndDateTime == "":
		p.EndDateTime = &time.Time{}
	case in.EndDateTime != nil:
		end, err := utils.ParseFlexibleTime(*in.EndDateTime)
		if err != nil {
			return p, status.Invalid("end_date_time: %s", err.Error())
		}
		p.EndDateTime = &end
	case in.EndTime != nil && *in.EndTime != "":
		if p.StartDateTime == nil {
			return p, status.Invalid("end_time needs a date or start_date_time in the same request")
		}
		end, err := utils.CombineDateAndClock(p.StartDateTime.Format("2006-01-02"), *in.EndTime)
		if err != nil {
			return p, status.Invalid("end_time: %s", err.Error())
		}
		if !end.After(*p.StartDateTime) {
			end = end.Add(24 * time.Hour)
		}
		p.EndDateTime = &end
	}
	return p, nil
}

func classifyAll(events []models.Event, now time.Time, policy models.ClassifyPolicy) []models.Event {
	out := make([]models.Event, len(events))
	for i, ev := range events {
		out[i] = ev.Classified(now, policy)
	}
	return out
}

// setListCaching writes ETag and Last-Modified for a classified listing and
// reports whether the client copy is still fresh. The bucket sizes are part
// of the tag because classification moves with the clock.
func setListCaching(c *gin.Context, events []models.Event, grouped models.ClassifiedEvents) bool {
	if len(events) == 0 {
		return false
	}
	latest := events[0]
	for _, ev := range events {
		if ev.UpdatedAt.After(latest.UpdatedAt) {
			latest = ev
		}
	}

	etag := utils.GenerateListETag(latest.ID, latest.UpdatedAt, len(events),
		len(grouped.Upcoming), len(grouped.Past), len(grouped.Draft))
	if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	c.Header("ETag", etag)
	c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))
	return false
}

// ---------------- LIST (public) ----------------
func ListEvents(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		listType := strings.ToLower(c.Query("type"))
		switch listType {
		case "", "all", "upcoming", "past", "classified":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "type must be upcoming, past, classified or all"})
			return
		}

		// Drafts are only reachable through the admin API.
		if st := c.Query("status"); st != "" && st != models.EventPublished {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only published events are listed here"})
			return
		}
		filter := store.EventFilter{
			Category: c.Query("category"),
			City:     c.Query("city"),
			Status:   models.EventPublished,
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		events, err := env.Events.List(ctx, filter)
		if err != nil {
			respondError(c, err, "events", "fetch")
			return
		}
		now := env.Now()
		grouped := models.ClassifiedEvents{Upcoming: []models.Event{}, Past: []models.Event{}, Draft: []models.Event{}}
		visible := []models.Event{}
		for _, ev := range classifyAll(events, now, env.Policy) {
			switch ev.Classification {
			case models.ClassUpcoming:
				grouped.Upcoming = append(grouped.Upcoming, ev)
			case models.ClassPast:
				grouped.Past = append(grouped.Past, ev)
			default:
				grouped.Draft = append(grouped.Draft, ev)
				continue
			}
			visible = append(visible, ev)
		}
		if setListCaching(c, events, grouped) {
			return
		}
		grouped.Draft = []models.Event{}

		// Most recent past events first.
		sort.SliceStable(grouped.Past, func(i, j int) bool {
			return grouped.Past[i].StartDateTime.After(grouped.Past[j].StartDateTime)
		})

		switch listType {
		case "upcoming":
			c.JSON(http.StatusOK, gin.H{"events": grouped.Upcoming})
		case "past":
			c.JSON(http.StatusOK, gin.H{"events": grouped.Past})
		case "classified":
			c.JSON(http.StatusOK, grouped)
		default:
			c.JSON(http.StatusOK, gin.H{"events": visible})
		}
	}
}

// ---------------- GET (public) ----------------
func GetEvent(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		ev, err := env.Events.GetBySlug(ctx, c.Param("slug"))
		if err != nil {
			respondError(c, err, "event", "fetch")
			return
		}

		classified := ev.Classified(env.Now(), env.Policy)
		// Drafts are only reachable through the admin API.
		if classified.Classification == models.ClassDraft {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}

		etag := utils.GenerateETag(ev.ID, ev.UpdatedAt, string(classified.Classification))
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", ev.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, gin.H{"event": classified})
	}
}

// ---------------- LIST (admin) ----------------
func AdminListEvents(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		events, err := env.Events.List(ctx, store.EventFilter{
			Category: c.Query("category"),
			City:     c.Query("city"),
			Status:   c.Query("status"),
		})
		if err != nil {
			respondError(c, err, "events", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": classifyAll(events, env.Now(), env.Policy)})
	}
}

// ---------------- CREATE ----------------
func CreateEvent(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input eventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := input.patch()
		if err != nil {
			respondError(c, err, "event", "create")
			return
		}

		var ev models.Event
		p.Apply(&ev)

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Events.Create(ctx, &ev); err != nil {
			respondError(c, err, "event", "create")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"event": ev.Classified(env.Now(), env.Policy), "message": "Event created successfully"})
	}
}

// ---------------- UPDATE ----------------
func UpdateEvent(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "event")
		if !ok {
			return
		}

		var input eventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := input.patch()
		if err != nil {
			respondError(c, err, "event", "update")
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		ev, err := env.Events.Update(ctx, id, p)
		if err != nil {
			respondError(c, err, "event", "update")
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": ev.Classified(env.Now(), env.Policy), "message": "Event updated successfully"})
	}
}

// ---------------- DELETE ----------------
func DeleteEvent(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "event")
		if !ok {
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		if err := env.Events.Delete(ctx, id); err != nil {
			respondError(c, err, "event", "delete")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
	}
}

// ---------------- STATS ----------------
func EventStats(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "event")
		if !ok {
			return
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		stats, err := env.Orders.EventStats(ctx, id)
		if err != nil {
			respondError(c, err, "event stats", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}

// ---------------- SEED ----------------
func SeedEvents(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		count, seeded, err := env.Events.SeedDefaults(ctx)
		if err != nil {
			respondError(c, err, "events", "seed")
			return
		}
		if !seeded {
			c.JSON(http.StatusOK, gin.H{"seeded": false, "count": count, "message": "Events already exist"})
			return
		}
		logger.Log.Info("[events] seeded starter events", "count", count)
		c.JSON(http.StatusCreated, gin.H{"seeded": true, "count": count})
	}
}
