package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v3"

	"github.com/phillip/culture-events-go/logger"
	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	utils "github.com/phillip/culture-events-go/utils"
)

const maxSlugAttempts = 50

//go:embed seed/events.yaml
var defaultEventsYAML []byte

type EventStore struct {
	col *mongo.Collection
	now Clock
}

func NewEventStore(db *mongo.Database) *EventStore {
	return &EventStore{col: db.Collection(EventsCollection), now: utcNow}
}

type EventFilter struct {
	Category string
	City     string
	Status   string // empty means any
}

// EventPatch carries the fields of a partial update. Nil means unchanged.
type EventPatch struct {
	Title           *string
	Slug            *string
	Category        *string
	City            *string
	Venue           *string
	VenueAddress    *string
	GoogleMapsURL   *string
	Description     *string
	LongDescription *string
	Poster          *string
	CoverImageURL   *string
	Rules           *[]string
	Schedule        *[]models.ScheduleItem
	FAQs            *[]models.FAQ
	TicketTypes     *[]models.TicketType
	TicketPlatforms *models.TicketPlatforms
	Capacity        *int
	Featured        *bool
	Brand           *string
	Tags            *[]string
	Status          *string
	StatusOverride  *models.StatusOverride
	StartDateTime   *time.Time
	// EndDateTime set to the zero time clears the end.
	EndDateTime *time.Time
}

func (p EventPatch) empty() bool {
	return p == EventPatch{}
}

func validateEvent(e *models.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return status.Invalid("title is required")
	}
	if e.Status != models.EventPublished && e.Status != models.EventDraft {
		return status.Invalid("status must be %q or %q", models.EventPublished, models.EventDraft)
	}
	if e.EndDateTime != nil && !e.StartDateTime.IsZero() && e.EndDateTime.Before(e.StartDateTime) {
		return status.Invalid("end_date_time must not be before start_date_time")
	}
	return nil
}

// Create stamps, slugs and inserts e. A missing slug is derived from the title.
func (s *EventStore) Create(ctx context.Context, e *models.Event) error {
	if e.Status == "" {
		e.Status = models.EventDraft
	}
	if err := validateEvent(e); err != nil {
		return err
	}

	base := e.Slug
	if base == "" {
		base = e.Title
	}
	slug, err := s.uniqueSlug(ctx, utils.Slugify(base), primitive.NilObjectID)
	if err != nil {
		return err
	}

	now := s.now()
	e.ID = primitive.NewObjectID()
	e.Slug = slug
	e.CreatedAt = now
	e.UpdatedAt = now
	e.SyncLegacyFields()
	carrySold(nil, e.TicketTypes)

	if _, err := s.col.InsertOne(ctx, e); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("event slug %q: %w", slug, status.ErrConflict)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// uniqueSlug appends -2, -3, ... until no other event owns the slug.
func (s *EventStore) uniqueSlug(ctx context.Context, base string, self primitive.ObjectID) (string, error) {
	if base == "" {
		return "", status.Invalid("title must contain letters or digits")
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		filter := bson.M{"slug": candidate}
		if !self.IsZero() {
			filter["_id"] = bson.M{"$ne": self}
		}
		n, err := s.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("slug %q: %w", base, status.ErrConflict)
}

func (s *EventStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return findOne[models.Event](ctx, s.col, bson.M{"_id": id})
}

// GetBySlug also accepts an event id, which older links use.
func (s *EventStore) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	ev, err := findOne[models.Event](ctx, s.col, bson.M{"slug": slug})
	if !errors.Is(err, status.ErrNotFound) {
		return ev, err
	}
	id, perr := primitive.ObjectIDFromHex(slug)
	if perr != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// List returns events ordered by start time.
func (s *EventStore) List(ctx context.Context, f EventFilter) ([]models.Event, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.City != "" {
		filter["city"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.City) + "$", "$options": "i"}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date_time", Value: 1}, {Key: "_id", Value: 1}})
	return findAll[models.Event](ctx, s.col, filter, opts)
}

// Update applies p to the stored event and rewrites the legacy date fields.
func (s *EventStore) Update(ctx context.Context, id primitive.ObjectID, p EventPatch) (*models.Event, error) {
	if p.empty() {
		return nil, status.Invalid("no fields to update")
	}
	ev, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	prevTypes := ev.TicketTypes
	p.Apply(ev)
	if p.TicketTypes != nil {
		carrySold(prevTypes, ev.TicketTypes)
	}
	if err := validateEvent(ev); err != nil {
		return nil, err
	}

	if p.Slug != nil {
		base := ev.Slug
		if base == "" {
			base = ev.Title
		}
		if ev.Slug, err = s.uniqueSlug(ctx, utils.Slugify(base), id); err != nil {
			return nil, err
		}
	}

	ev.UpdatedAt = s.now()
	ev.SyncLegacyFields()

	set := bson.M{
		"title":            ev.Title,
		"slug":             ev.Slug,
		"category":         ev.Category,
		"city":             ev.City,
		"venue":            ev.Venue,
		"venue_address":    ev.VenueAddress,
		"google_maps_url":  ev.GoogleMapsURL,
		"description":      ev.Description,
		"long_description": ev.LongDescription,
		"poster":           ev.Poster,
		"cover_image_url":  ev.CoverImageURL,
		"rules":            ev.Rules,
		"schedule":         ev.Schedule,
		"faqs":             ev.FAQs,
		"ticket_types":     ev.TicketTypes,
		"ticket_platforms": ev.TicketPlatforms,
		"capacity":         ev.Capacity,
		"featured":         ev.Featured,
		"brand":            ev.Brand,
		"tags":             ev.Tags,
		"status":           ev.Status,
		"status_override":  ev.StatusOverride,
		"start_date_time":  ev.StartDateTime,
		"date":             ev.Date,
		"time":             ev.Time,
		"end_time":         ev.EndTime,
		"updated_at":       ev.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if ev.EndDateTime != nil {
		set["end_date_time"] = *ev.EndDateTime
	} else {
		update["$unset"] = bson.M{"end_date_time": ""}
	}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("event slug %q: %w", ev.Slug, status.ErrConflict)
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, status.ErrNotFound
	}
	return ev, nil
}

// Apply copies the set fields of p onto e.
func (p EventPatch) Apply(e *models.Event) {
	setIf(&e.Title, p.Title)
	setIf(&e.Category, p.Category)
	setIf(&e.City, p.City)
	setIf(&e.Venue, p.Venue)
	setIf(&e.VenueAddress, p.VenueAddress)
	setIf(&e.GoogleMapsURL, p.GoogleMapsURL)
	setIf(&e.Description, p.Description)
	setIf(&e.LongDescription, p.LongDescription)
	setIf(&e.Poster, p.Poster)
	setIf(&e.CoverImageURL, p.CoverImageURL)
	setIf(&e.Rules, p.Rules)
	setIf(&e.Schedule, p.Schedule)
	setIf(&e.FAQs, p.FAQs)
	setIf(&e.TicketTypes, p.TicketTypes)
	setIf(&e.TicketPlatforms, p.TicketPlatforms)
	setIf(&e.Capacity, p.Capacity)
	setIf(&e.Featured, p.Featured)
	setIf(&e.Brand, p.Brand)
	setIf(&e.Tags, p.Tags)
	setIf(&e.Status, p.Status)
	setIf(&e.StatusOverride, p.StatusOverride)
	setIf(&e.StartDateTime, p.StartDateTime)
	if p.EndDateTime != nil {
		if p.EndDateTime.IsZero() {
			e.EndDateTime = nil
		} else {
			end := *p.EndDateTime
			e.EndDateTime = &end
		}
	}
	if p.Slug != nil {
		e.Slug = utils.Slugify(*p.Slug)
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (s *EventStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.col, id)
}

// carrySold keeps the sold counters of ticket types that survive an edit.
// Sold is never taken from client input.
func carrySold(prev, next []models.TicketType) {
	for i := range next {
		next[i].Sold = 0
		for _, old := range prev {
			if (next[i].ID != "" && next[i].ID == old.ID) || strings.EqualFold(next[i].Name, old.Name) {
				next[i].Sold = old.Sold
				break
			}
		}
	}
}

// ReserveTickets adds quantity to the sold counter of the named ticket type.
// When the type has a capacity the increment only applies while enough seats
// remain, so concurrent orders cannot oversell it.
func (s *EventStore) ReserveTickets(ctx context.Context, eventID primitive.ObjectID, tt models.TicketType, quantity int) error {
	match := bson.M{"name": tt.Name}
	if tt.Capacity > 0 {
		match["capacity"] = tt.Capacity
		match["$or"] = bson.A{
			bson.M{"sold": bson.M{"$exists": false}},
			bson.M{"sold": bson.M{"$lte": tt.Capacity - quantity}},
		}
	}
	filter := bson.M{"_id": eventID, "ticket_types": bson.M{"$elemMatch": match}}
	update := bson.M{"$inc": bson.M{"ticket_types.$.sold": quantity}}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reserve tickets: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("not enough %s tickets left: %w", tt.Name, status.ErrConflict)
	}
	return nil
}

// ReleaseTickets hands back seats taken by ReserveTickets.
func (s *EventStore) ReleaseTickets(ctx context.Context, eventID primitive.ObjectID, ticketType string, quantity int) error {
	filter := bson.M{
		"_id":          eventID,
		"ticket_types": bson.M{"$elemMatch": bson.M{"name": ticketType, "sold": bson.M{"$gte": quantity}}},
	}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"ticket_types.$.sold": -quantity}})
	if err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	if res.MatchedCount == 0 {
		return status.ErrNotFound
	}
	return nil
}

// MigrateLegacyDates fills start_date_time (and end_date_time) on documents
// that only carry the old date/time strings. Documents that cannot be parsed
// are logged and skipped; they classify as draft until fixed.
func (s *EventStore) MigrateLegacyDates(ctx context.Context) (int, error) {
	filter := bson.M{
		"date": bson.M{"$nin": bson.A{"", nil}},
		"$or": bson.A{
			bson.M{"start_date_time": bson.M{"$exists": false}},
			bson.M{"start_date_time": nil},
			bson.M{"start_date_time": time.Time{}},
		},
	}
	legacy, err := findAll[models.Event](ctx, s.col, filter)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, ev := range legacy {
		start, err := utils.CombineDateAndClock(ev.Date, ev.Time)
		if err != nil {
			logger.Log.Warn("[migrate] skipping event with unparsable date", "id", ev.ID.Hex(), "date", ev.Date, "time", ev.Time, "error", err)
			continue
		}
		set := bson.M{"start_date_time": start, "updated_at": s.now()}
		if ev.EndTime != "" {
			end, err := utils.CombineDateAndClock(start.Format("2006-01-02"), ev.EndTime)
			if err == nil {
				if !end.After(start) {
					end = end.Add(24 * time.Hour)
				}
				set["end_date_time"] = end
			}
		}
		if _, err := s.col.UpdateOne(ctx, bson.M{"_id": ev.ID}, bson.M{"$set": set}); err != nil {
			return migrated, fmt.Errorf("migrate event %s: %w", ev.ID.Hex(), err)
		}
		migrated++
	}
	return migrated, nil
}

type seedTicketType struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Price       float64 `yaml:"price"`
	Description string  `yaml:"description"`
	Capacity    int     `yaml:"capacity"`
}

type seedEvent struct {
	Slug          string                `yaml:"slug"`
	Title         string                `yaml:"title"`
	Category      string                `yaml:"category"`
	StartInDays   int                   `yaml:"start_in_days"`
	Time          string                `yaml:"time"`
	EndTime       string                `yaml:"end_time"`
	City          string                `yaml:"city"`
	Venue         string                `yaml:"venue"`
	VenueAddress  string                `yaml:"venue_address"`
	GoogleMapsURL string                `yaml:"google_maps_url"`
	Poster        string                `yaml:"poster"`
	Description   string                `yaml:"description"`
	Rules         []string              `yaml:"rules"`
	FAQs          []models.FAQ          `yaml:"faqs"`
	Schedule      []models.ScheduleItem `yaml:"schedule"`
	TicketTypes   []seedTicketType      `yaml:"ticket_types"`
	DesipassURL   string                `yaml:"desipass_url"`
	EventbriteURL string                `yaml:"eventbrite_url"`
	Capacity      int                   `yaml:"capacity"`
	Featured      bool                  `yaml:"featured"`
	Brand         string                `yaml:"brand"`
	Tags          []string              `yaml:"tags"`
}

// defaultEvents builds the starter events with start dates relative to now.
func defaultEvents(now time.Time) ([]models.Event, error) {
	var seeds []seedEvent
	if err := yaml.Unmarshal(defaultEventsYAML, &seeds); err != nil {
		return nil, fmt.Errorf("parse default events: %w", err)
	}

	out := make([]models.Event, 0, len(seeds))
	for _, sd := range seeds {
		day := now.AddDate(0, 0, sd.StartInDays).Format("2006-01-02")
		start, err := utils.CombineDateAndClock(day, sd.Time)
		if err != nil {
			return nil, fmt.Errorf("seed event %s: %w", sd.Slug, err)
		}
		ev := models.Event{
			Slug: utils.Slugify(sd.Slug), Title: sd.Title, Category: sd.Category,
			City: sd.City, Venue: sd.Venue, VenueAddress: sd.VenueAddress, GoogleMapsURL: sd.GoogleMapsURL,
			Poster: sd.Poster, CoverImageURL: sd.Poster, Description: sd.Description,
			Rules: sd.Rules, FAQs: sd.FAQs, Schedule: sd.Schedule,
			TicketPlatforms: models.TicketPlatforms{DesipassURL: sd.DesipassURL, EventbriteURL: sd.EventbriteURL},
			Capacity:        sd.Capacity, Featured: sd.Featured, Brand: sd.Brand, Tags: sd.Tags,
			StartDateTime: start,
			Status:        models.EventPublished,
		}
		if sd.EndTime != "" {
			end, err := utils.CombineDateAndClock(day, sd.EndTime)
			if err != nil {
				return nil, fmt.Errorf("seed event %s: %w", sd.Slug, err)
			}
			if !end.After(start) {
				end = end.Add(24 * time.Hour)
			}
			ev.EndDateTime = &end
		}
		for _, tt := range sd.TicketTypes {
			ev.TicketTypes = append(ev.TicketTypes, models.TicketType{
				ID: tt.ID, Name: tt.Name, Price: models.MoneyFromFloat(tt.Price),
				Description: tt.Description, Capacity: tt.Capacity, Available: true,
			})
		}
		out = append(out, ev)
	}
	return out, nil
}

// SeedDefaults inserts the starter events when the collection is empty and
// returns how many events the collection holds afterwards.
func (s *EventStore) SeedDefaults(ctx context.Context) (count int, seeded bool, err error) {
	n, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, false, fmt.Errorf("count events: %w", err)
	}
	if n > 0 {
		return int(n), false, nil
	}

	now := s.now()
	events, err := defaultEvents(now)
	if err != nil {
		return 0, false, err
	}
	docs := make([]any, len(events))
	for i := range events {
		events[i].ID = primitive.NewObjectID()
		events[i].CreatedAt = now
		events[i].UpdatedAt = now
		events[i].SyncLegacyFields()
		docs[i] = events[i]
	}
	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		return 0, false, fmt.Errorf("seed events: %w", err)
	}
	return len(events), true, nil
}
