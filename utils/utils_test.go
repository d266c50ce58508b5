package utils

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/phillip/culture-events-go/models"
)

var ticketCodePattern = regexp.MustCompile(`^TKT-\d{13}-[0-9A-Z]{9}$`)

func TestGenerateTicketCodeFormat(t *testing.T) {
	now := time.UnixMilli(1781976000000)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateTicketCode(now)
		require.NoError(t, err)
		assert.Regexp(t, ticketCodePattern, code)
		assert.True(t, strings.HasPrefix(code, "TKT-1781976000000-"))
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	code, err := GenerateOrderNumber(time.UnixMilli(1781976000000))
	require.NoError(t, err)
	assert.Regexp(t, `^ORD-1781976000000-[0-9A-Z]{9}$`, code)
}

func TestQRDataURLRoundTrip(t *testing.T) {
	url, err := EncodeQRDataURL("TKT-1-ABC")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	png, err := DecodePNGDataURL(url)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = DecodePNGDataURL("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "holi-festival-of-colors-berlin-2025", Slugify("Holi Festival of Colors - Berlin 2025"))
	assert.Equal(t, "garba-night", Slugify("  Garba   Night!! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestParseFlexibleTime(t *testing.T) {
	got, err := ParseFlexibleTime("2026-07-01T14:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC), got)

	got, err = ParseFlexibleTime("2026-07-01 20:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 20, 30, 0, 0, time.UTC), got)

	_, err = ParseFlexibleTime("next friday")
	assert.Error(t, err)
}

func TestCombineDateAndClock(t *testing.T) {
	got, err := CombineDateAndClock("2026-07-01", "14:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC), got)

	got, err = CombineDateAndClock("2026-07-01", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = CombineDateAndClock("2026-07-01", "2pm")
	assert.Error(t, err)
}

func TestGenerateETag(t *testing.T) {
	id := primitive.NewObjectID()
	at := time.Unix(1700000000, 0)
	assert.Equal(t, GenerateETag(id, at), GenerateETag(id, at))
	assert.NotEqual(t, GenerateETag(id, at), GenerateETag(id, at.Add(time.Second)))
	assert.NotEqual(t, GenerateETag(id, at, "upcoming"), GenerateETag(id, at, "past"))
	assert.Equal(t, GenerateETag(id, at), GenerateListETag(id, at))
	assert.NotEqual(t, GenerateListETag(id, at, 3), GenerateListETag(id, at, 2))
}

func TestLocalImageStoreSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewLocalImageStore(root, "/uploads/")

	url, err := store.Save(context.Background(), "events", "poster.png", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/events/poster.png", url)

	data, err := os.ReadFile(filepath.Join(root, "events", "poster.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(root, "events", "poster.png"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), "https://cdn.example/other.png"))
}

func TestLocalImageStoreRejectsTraversal(t *testing.T) {
	store := NewLocalImageStore(t.TempDir(), "/uploads")
	_, err := store.Save(context.Background(), "..", "x.png", strings.NewReader("x"))
	assert.Error(t, err)
	_, err = store.Save(context.Background(), "events", "../x.png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestExtractPublicID(t *testing.T) {
	id, err := extractPublicID("https://res.cloudinary.com/demo/image/upload/v1234567890/events/abc123.jpg")
	require.NoError(t, err)
	assert.Equal(t, "events/abc123", id)

	id, err = extractPublicID("https://res.cloudinary.com/demo/image/upload/gallery/x.png")
	require.NoError(t, err)
	assert.Equal(t, "gallery/x", id)

	_, err = extractPublicID("https://example.com/nothing.png")
	assert.Error(t, err)
}

func TestCloudinaryDeleteIgnoresForeignURLs(t *testing.T) {
	assert.True(t, isCloudinaryURL("https://res.cloudinary.com/demo/image/upload/events/a.jpg"))
	assert.False(t, isCloudinaryURL("https://images.unsplash.com/photo-1.jpg"))
	assert.False(t, isCloudinaryURL("https://cloudinary.com.evil.test/a.jpg"))
	assert.False(t, isCloudinaryURL("/uploads/events/a.jpg"))

	store, err := NewCloudinaryImageStore("demo", "key", "secret")
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "https://images.unsplash.com/photo-1.jpg"))
	assert.NoError(t, store.Delete(context.Background(), "/uploads/events/a.jpg"))
}

func TestRenderTicketsPDF(t *testing.T) {
	qr, err := EncodeQRDataURL("TKT-1-AAA")
	require.NoError(t, err)

	ev := &models.Event{Title: "Diwali Gala – München", Venue: "Zenith", City: "Munich", StartDateTime: time.Date(2026, 11, 7, 19, 0, 0, 0, time.UTC)}
	order := &models.Order{OrderNumber: "ORD-1-BBB"}
	tickets := []models.Ticket{
		{TicketCode: "TKT-1-AAA", QRCode: qr, TicketType: "regular", AttendeeName: "Asha"},
		{TicketCode: "TKT-1-AAB", QRCode: qr, TicketType: "regular", AttendeeName: "Asha"},
	}

	pdf, err := RenderTicketsPDF(ev, order, tickets)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	tickets[1].QRCode = "broken"
	_, err = RenderTicketsPDF(ev, order, tickets)
	assert.Error(t, err)
}
