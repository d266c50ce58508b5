package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventPublished = "published"
	EventDraft     = "draft"
)

type ScheduleItem struct {
	Time     string `bson:"time" json:"time"`
	Activity string `bson:"activity" json:"activity"`
}

type FAQ struct {
	Question string `bson:"question" json:"question"`
	Answer   string `bson:"answer" json:"answer"`
}

type TicketType struct {
	ID          string `bson:"id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Price       Money  `bson:"price" json:"price"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Available   bool   `bson:"available" json:"available"`
	Capacity    int    `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Sold        int    `bson:"sold,omitempty" json:"sold,omitempty"`
}

type TicketPlatforms struct {
	DesipassURL   string `bson:"desipass_url,omitempty" json:"desipass_url,omitempty"`
	EventbriteURL string `bson:"eventbrite_url,omitempty" json:"eventbrite_url,omitempty"`
}

type Event struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug            string             `bson:"slug" json:"slug"`
	Title           string             `bson:"title" json:"title"`
	Category        string             `bson:"category,omitempty" json:"category,omitempty"`
	City            string             `bson:"city,omitempty" json:"city,omitempty"`
	Venue           string             `bson:"venue,omitempty" json:"venue,omitempty"`
	VenueAddress    string             `bson:"venue_address,omitempty" json:"venue_address,omitempty"`
	GoogleMapsURL   string             `bson:"google_maps_url,omitempty" json:"google_maps_url,omitempty"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	LongDescription string             `bson:"long_description,omitempty" json:"long_description,omitempty"`
	Poster          string             `bson:"poster,omitempty" json:"poster,omitempty"`
	CoverImageURL   string             `bson:"cover_image_url,omitempty" json:"cover_image_url,omitempty"`
	Rules           []string           `bson:"rules,omitempty" json:"rules,omitempty"`
	Schedule        []ScheduleItem     `bson:"schedule,omitempty" json:"schedule,omitempty"`
	FAQs            []FAQ              `bson:"faqs,omitempty" json:"faqs,omitempty"`
	TicketTypes     []TicketType       `bson:"ticket_types,omitempty" json:"ticket_types,omitempty"`
	TicketPlatforms TicketPlatforms    `bson:"ticket_platforms,omitempty" json:"ticket_platforms,omitempty"`
	Capacity        int                `bson:"capacity,omitempty" json:"capacity,omitempty"`
	Featured        bool               `bson:"featured" json:"featured"`
	Brand           string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`

	StartDateTime time.Time  `bson:"start_date_time" json:"start_date_time"`
	EndDateTime   *time.Time `bson:"end_date_time,omitempty" json:"end_date_time,omitempty"`
	// Legacy fields, derived from the instants on every write.
	Date    string `bson:"date,omitempty" json:"date,omitempty"`
	Time    string `bson:"time,omitempty" json:"time,omitempty"`
	EndTime string `bson:"end_time,omitempty" json:"end_time,omitempty"`

	Status         string         `bson:"status" json:"status"` // published, draft
	StatusOverride StatusOverride `bson:"status_override" json:"status_override"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Enriched on read, never stored
	Classification Classification `bson:"-" json:"classification,omitempty"`
}

// SyncLegacyFields rewrites date/time/end_time from the canonical instants.
func (e *Event) SyncLegacyFields() {
	if e.StartDateTime.IsZero() {
		e.Date, e.Time = "", ""
	} else {
		start := e.StartDateTime.UTC()
		e.Date = start.Format("2006-01-02")
		e.Time = start.Format("15:04")
	}
	if e.EndDateTime != nil && !e.EndDateTime.IsZero() {
		e.EndTime = e.EndDateTime.UTC().Format("15:04")
	} else {
		e.EndTime = ""
	}
}

// ClassifiedEvents is the grouped listing returned for type=classified.
type ClassifiedEvents struct {
	Upcoming []Event `json:"upcoming"`
	Past     []Event `json:"past"`
	Draft    []Event `json:"draft"`
}
