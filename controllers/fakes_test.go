package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/phillip/culture-events-go/config"
	middleware "github.com/phillip/culture-events-go/middleware"
	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	store "github.com/phillip/culture-events-go/store"
)

const testPassword = "s3cret"

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------- events ----------------
type fakeEvents struct {
	items []models.Event
}

func (f *fakeEvents) Create(ctx context.Context, e *models.Event) error {
	e.ID = primitive.NewObjectID()
	f.items = append(f.items, *e)
	return nil
}

func (f *fakeEvents) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			ev := f.items[i]
			return &ev, nil
		}
	}
	return nil, status.ErrNotFound
}

func (f *fakeEvents) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	for i := range f.items {
		if f.items[i].Slug == slug {
			ev := f.items[i]
			return &ev, nil
		}
	}
	return nil, status.ErrNotFound
}

func (f *fakeEvents) List(ctx context.Context, fl store.EventFilter) ([]models.Event, error) {
	out := []models.Event{}
	for _, ev := range f.items {
		if fl.Status != "" && ev.Status != fl.Status {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEvents) Update(ctx context.Context, id primitive.ObjectID, p store.EventPatch) (*models.Event, error) {
	ev, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Apply(ev)
	return ev, nil
}

func (f *fakeEvents) Delete(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (f *fakeEvents) SeedDefaults(ctx context.Context) (int, bool, error) {
	if len(f.items) > 0 {
		return len(f.items), false, nil
	}
	f.items = append(f.items, models.Event{ID: primitive.NewObjectID(), Slug: "starter", Status: models.EventPublished})
	return len(f.items), true, nil
}

func (f *fakeEvents) ticketType(eventID primitive.ObjectID, name string) *models.TicketType {
	for i := range f.items {
		if f.items[i].ID != eventID {
			continue
		}
		for j := range f.items[i].TicketTypes {
			if f.items[i].TicketTypes[j].Name == name {
				return &f.items[i].TicketTypes[j]
			}
		}
	}
	return nil
}

func (f *fakeEvents) ReserveTickets(ctx context.Context, eventID primitive.ObjectID, tt models.TicketType, quantity int) error {
	stored := f.ticketType(eventID, tt.Name)
	if stored == nil || (stored.Capacity > 0 && stored.Sold+quantity > stored.Capacity) {
		return fmt.Errorf("not enough %s tickets left: %w", tt.Name, status.ErrConflict)
	}
	stored.Sold += quantity
	return nil
}

func (f *fakeEvents) ReleaseTickets(ctx context.Context, eventID primitive.ObjectID, ticketType string, quantity int) error {
	stored := f.ticketType(eventID, ticketType)
	if stored == nil || stored.Sold < quantity {
		return status.ErrNotFound
	}
	stored.Sold -= quantity
	return nil
}

// ---------------- orders ----------------
type fakeOrders struct {
	byKey   map[string]models.Order
	tickets map[primitive.ObjectID][]models.Ticket
	created int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byKey: map[string]models.Order{}, tickets: map[primitive.ObjectID][]models.Ticket{}}
}

func (f *fakeOrders) CreateWithTickets(ctx context.Context, o *models.Order) ([]models.Ticket, bool, error) {
	if prev, ok := f.byKey[o.IdempotencyKey]; ok && o.IdempotencyKey != "" {
		if !strings.EqualFold(prev.Email, o.Email) || prev.EventID != o.EventID || prev.Quantity != o.Quantity {
			return nil, false, fmt.Errorf("idempotency key already used for another order: %w", status.ErrConflict)
		}
		*o = prev
		return f.tickets[prev.ID], true, nil
	}
	f.created++
	o.ID = primitive.NewObjectID()
	o.OrderNumber = fmt.Sprintf("ORD-TEST-%d", f.created)
	o.Status = models.OrderPending

	ts := make([]models.Ticket, o.Quantity)
	for i := range ts {
		ts[i] = models.Ticket{
			ID:         primitive.NewObjectID(),
			TicketCode: fmt.Sprintf("TKT-%d-%d", f.created, i),
			OrderID:    o.ID,
			EventID:    o.EventID,
			TicketType: o.TicketType,
		}
	}
	f.tickets[o.ID] = ts
	if o.IdempotencyKey != "" {
		f.byKey[o.IdempotencyKey] = *o
	}
	return ts, false, nil
}

func (f *fakeOrders) Confirm(ctx context.Context, ref, paymentIntentID string) (*models.Order, error) {
	return nil, status.ErrNotFound
}

func (f *fakeOrders) LookupByNumber(ctx context.Context, number, email string) (*models.Order, error) {
	return nil, status.ErrNotFound
}

func (f *fakeOrders) List(ctx context.Context, fl store.OrderFilter) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (f *fakeOrders) EventStats(ctx context.Context, eventID primitive.ObjectID) (models.EventStats, error) {
	return models.EventStats{}, nil
}

// ---------------- tickets ----------------
type fakeTickets struct {
	byCode map[string]*models.Ticket
	now    time.Time
}

func (f *fakeTickets) FindByOrder(ctx context.Context, orderID primitive.ObjectID) ([]models.Ticket, error) {
	out := []models.Ticket{}
	for _, t := range f.byCode {
		if t.OrderID == orderID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTickets) Lookup(ctx context.Context, code string) (*models.Ticket, error) {
	t, ok := f.byCode[code]
	if !ok {
		return nil, status.ErrNotFound
	}
	if t.IsUsed {
		return nil, &status.AlreadyUsedError{TicketCode: code, UsedAt: *t.UsedAt}
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTickets) CheckIn(ctx context.Context, code string) (*models.Ticket, error) {
	t, err := f.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	usedAt := f.now
	f.byCode[code].IsUsed = true
	f.byCode[code].UsedAt = &usedAt
	t.IsUsed = true
	t.UsedAt = &usedAt
	return t, nil
}

// ---------------- testimonials ----------------
type fakeTestimonials struct {
	created []models.Testimonial
	recent  bool
}

func (f *fakeTestimonials) Create(ctx context.Context, t *models.Testimonial) error {
	t.ID = primitive.NewObjectID()
	f.created = append(f.created, *t)
	return nil
}

func (f *fakeTestimonials) SubmittedSince(ctx context.Context, email string, since time.Time) (bool, error) {
	return f.recent, nil
}

func (f *fakeTestimonials) Approve(ctx context.Context, id primitive.ObjectID) error { return nil }
func (f *fakeTestimonials) Delete(ctx context.Context, id primitive.ObjectID) error  { return nil }

func (f *fakeTestimonials) ListApproved(ctx context.Context, limit int) ([]models.Testimonial, error) {
	return []models.Testimonial{}, nil
}

func (f *fakeTestimonials) ListAll(ctx context.Context) ([]models.Testimonial, error) {
	return f.created, nil
}

func (f *fakeTestimonials) ListPending(ctx context.Context) ([]models.Testimonial, error) {
	return f.created, nil
}

func (f *fakeTestimonials) AverageRating(ctx context.Context) (models.RatingSummary, error) {
	return models.RatingSummary{AverageRating: 5, TotalRatings: len(f.created)}, nil
}

func (f *fakeTestimonials) Distribution(ctx context.Context) (map[int]int, error) {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: len(f.created)}, nil
}

// ---------------- newsletter ----------------
type fakeNewsletter struct {
	emails map[string]bool
}

func (f *fakeNewsletter) Subscribe(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return false, status.Invalid("a valid email is required")
	}
	if f.emails[email] {
		return false, nil
	}
	f.emails[email] = true
	return true, nil
}

func (f *fakeNewsletter) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !f.emails[email] {
		return status.ErrNotFound
	}
	f.emails[email] = false
	return nil
}

func (f *fakeNewsletter) List(ctx context.Context, activeOnly bool) ([]models.NewsletterSubscriber, error) {
	return []models.NewsletterSubscriber{}, nil
}

// ---------------- settings ----------------
type fakeSettings struct {
	values map[string]any
}

func (f *fakeSettings) GetAll(ctx context.Context) (map[string]any, error) {
	return f.values, nil
}

func (f *fakeSettings) SetMany(ctx context.Context, values map[string]any) error {
	for k, v := range values {
		f.values[k] = v
	}
	return nil
}

// ---------------- images ----------------
type fakeImages struct {
	deleted []string
	fail    bool
}

func (f *fakeImages) Save(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	return "/uploads/" + folder + "/" + filename, nil
}

func (f *fakeImages) Delete(ctx context.Context, imageURL string) error {
	if f.fail {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, imageURL)
	return nil
}

// ---------------- harness ----------------
type testEnv struct {
	*Env
	events       *fakeEvents
	orders       *fakeOrders
	tickets      *fakeTickets
	testimonials *fakeTestimonials
	newsletter   *fakeNewsletter
	settings     *fakeSettings
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		AdminPassword:        testPassword,
		AdminSessionSecret:   "0123456789abcdef0123456789abcdef",
		AdminSessionTTL:      time.Hour,
		UploadDir:            t.TempDir(),
		UploadMaxBytes:       5 * 1024 * 1024,
		EventDefaultDuration: 6 * time.Hour,
		TestimonialWindow:    time.Hour,
	}
	te := &testEnv{
		events:       &fakeEvents{},
		orders:       newFakeOrders(),
		tickets:      &fakeTickets{byCode: map[string]*models.Ticket{}, now: testNow},
		testimonials: &fakeTestimonials{},
		newsletter:   &fakeNewsletter{emails: map[string]bool{}},
		settings:     &fakeSettings{values: map[string]any{}},
	}
	te.Env = &Env{
		Config:       cfg,
		Events:       te.events,
		Orders:       te.orders,
		Tickets:      te.tickets,
		Testimonials: te.testimonials,
		Newsletter:   te.newsletter,
		Settings:     te.settings,
		Admin:        middleware.NewAdminAuth(cfg, nil),
		Policy:       models.ClassifyPolicy{DefaultDuration: cfg.EventDefaultDuration},
		Now:          func() time.Time { return testNow },
		HealthChecks: map[string]func(context.Context) error{},
	}
	return te
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
