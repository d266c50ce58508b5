package controllers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/culture-events-go/config"
	middleware "github.com/phillip/culture-events-go/middleware"
	models "github.com/phillip/culture-events-go/models"
	store "github.com/phillip/culture-events-go/store"
	utils "github.com/phillip/culture-events-go/utils"
)

type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	List(ctx context.Context, f store.EventFilter) ([]models.Event, error)
	Update(ctx context.Context, id primitive.ObjectID, p store.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SeedDefaults(ctx context.Context) (int, bool, error)
	ReserveTickets(ctx context.Context, eventID primitive.ObjectID, tt models.TicketType, quantity int) error
	ReleaseTickets(ctx context.Context, eventID primitive.ObjectID, ticketType string, quantity int) error
}

type OrderRepository interface {
	CreateWithTickets(ctx context.Context, o *models.Order) ([]models.Ticket, bool, error)
	Confirm(ctx context.Context, ref, paymentIntentID string) (*models.Order, error)
	LookupByNumber(ctx context.Context, number, email string) (*models.Order, error)
	List(ctx context.Context, f store.OrderFilter) ([]models.Order, error)
	EventStats(ctx context.Context, eventID primitive.ObjectID) (models.EventStats, error)
}

type TicketRepository interface {
	FindByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Ticket, error)
	Lookup(ctx context.Context, code string) (*models.Ticket, error)
	CheckIn(ctx context.Context, code string) (*models.Ticket, error)
}

type TestimonialRepository interface {
	Create(ctx context.Context, t *models.Testimonial) error
	SubmittedSince(ctx context.Context, email string, since time.Time) (bool, error)
	Approve(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListApproved(ctx context.Context, limit int) ([]models.Testimonial, error)
	ListAll(ctx context.Context) ([]models.Testimonial, error)
	ListPending(ctx context.Context) ([]models.Testimonial, error)
	AverageRating(ctx context.Context) (models.RatingSummary, error)
	Distribution(ctx context.Context) (map[int]int, error)
}

type TeamRepository interface {
	Create(ctx context.Context, m *models.TeamMember) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamMember, error)
	List(ctx context.Context, f store.TeamFilter) ([]models.TeamMember, error)
	CityTeams(ctx context.Context) (map[string][]models.TeamMember, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.TeamMember, error)
	SeedDefaults(ctx context.Context) (int, bool, error)
}

type PartnerRepository interface {
	Create(ctx context.Context, p *models.Partner) error
	List(ctx context.Context) ([]models.Partner, error)
	SetReplied(ctx context.Context, id primitive.ObjectID, replied bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	List(ctx context.Context) ([]models.Contact, error)
	SetRead(ctx context.Context, id primitive.ObjectID, read bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type BrandRepository interface {
	Create(ctx context.Context, b *models.Brand) error
	List(ctx context.Context, activeOnly bool) ([]models.Brand, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
}

type GalleryRepository interface {
	Create(ctx context.Context, p *models.GalleryPhoto) error
	List(ctx context.Context, activeOnly bool) ([]models.GalleryPhoto, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.GalleryPhoto, error)
}

type ThemeRepository interface {
	Create(ctx context.Context, t *models.GalleryTheme) error
	List(ctx context.Context, publishedOnly bool) ([]models.GalleryTheme, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.GalleryTheme, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.GalleryTheme, error)
	Update(ctx context.Context, id primitive.ObjectID, p store.ThemePatch) error
	Delete(ctx context.Context, id primitive.ObjectID) (*models.GalleryTheme, error)
	ListPhotos(ctx context.Context, themeID primitive.ObjectID) ([]models.ThemePhoto, error)
	AddPhotos(ctx context.Context, themeID primitive.ObjectID, photos []models.ThemePhoto) ([]models.ThemePhoto, error)
	SetCover(ctx context.Context, photoID primitive.ObjectID) (*models.ThemePhoto, error)
	Reorder(ctx context.Context, themeID primitive.ObjectID, ids []primitive.ObjectID) error
	DeletePhoto(ctx context.Context, photoID primitive.ObjectID) (*models.ThemePhoto, error)
}

type NewsletterRepository interface {
	Subscribe(ctx context.Context, email string) (bool, error)
	Unsubscribe(ctx context.Context, email string) error
	List(ctx context.Context, activeOnly bool) ([]models.NewsletterSubscriber, error)
}

type SettingsRepository interface {
	GetAll(ctx context.Context) (map[string]any, error)
	SetMany(ctx context.Context, values map[string]any) error
}

// Env is what every handler factory closes over.
type Env struct {
	Config *config.Config

	Events       EventRepository
	Orders       OrderRepository
	Tickets      TicketRepository
	Testimonials TestimonialRepository
	Team         TeamRepository
	Partners     PartnerRepository
	Contacts     ContactRepository
	Brands       BrandRepository
	Gallery      GalleryRepository
	Themes       ThemeRepository
	Newsletter   NewsletterRepository
	Settings     SettingsRepository

	Images  utils.ImageStore
	Limiter middleware.Limiter // nil when Redis is not configured
	Admin   *middleware.AdminAuth
	Policy  models.ClassifyPolicy
	Now     func() time.Time

	// HealthChecks run for GET /health, keyed by dependency name.
	HealthChecks map[string]func(context.Context) error
}

func NewEnv(cfg *config.Config, st *store.Store, images utils.ImageStore, limiter middleware.Limiter, admin *middleware.AdminAuth) *Env {
	return &Env{
		Config:       cfg,
		Events:       st.Events,
		Orders:       st.Orders,
		Tickets:      st.Tickets,
		Testimonials: st.Testimonials,
		Team:         st.Team,
		Partners:     st.Partners,
		Contacts:     st.Contacts,
		Brands:       st.Brands,
		Gallery:      st.Gallery,
		Themes:       st.Themes,
		Newsletter:   st.Newsletter,
		Settings:     st.Settings,
		Images:       images,
		Limiter:      limiter,
		Admin:        admin,
		Policy:       models.ClassifyPolicy{DefaultDuration: cfg.EventDefaultDuration},
		Now:          func() time.Time { return time.Now().UTC() },
		HealthChecks: map[string]func(context.Context) error{},
	}
}
