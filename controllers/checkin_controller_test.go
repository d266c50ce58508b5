package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "github.com/phillip/culture-events-go/models"
)

func checkInRouter(env *Env) *gin.Engine {
	r := gin.New()
	r.GET("/admin/check-in", CheckInLookup(env))
	r.POST("/admin/check-in/confirm", CheckInConfirm(env))
	return r
}

func TestCheckInTwice(t *testing.T) {
	te := newTestEnv(t)
	te.tickets.byCode["TKT-1-ABC"] = &models.Ticket{TicketCode: "TKT-1-ABC"}
	r := checkInRouter(te.Env)

	w := doJSON(t, r, http.MethodGet, "/admin/check-in?ticket_code=TKT-1-ABC", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["valid"])

	w = doJSON(t, r, http.MethodPost, "/admin/check-in/confirm", map[string]string{"ticket_code": "TKT-1-ABC"})
	require.Equal(t, http.StatusOK, w.Code)

	// a later scan reports the first admission time
	te.tickets.now = testNow.Add(time.Hour)
	w = doJSON(t, r, http.MethodPost, "/admin/check-in/confirm", map[string]string{"ticket_code": "TKT-1-ABC"})
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ticket already used", body["error"])
	assert.Equal(t, testNow.Format(time.RFC3339), body["used_at"])

	w = doJSON(t, r, http.MethodGet, "/admin/check-in?ticket_code=TKT-1-ABC", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckInUnknownCode(t *testing.T) {
	te := newTestEnv(t)
	r := checkInRouter(te.Env)

	w := doJSON(t, r, http.MethodPost, "/admin/check-in/confirm", map[string]string{"ticket_code": "TKT-0-NOPE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/admin/check-in", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
