package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/culture-events-go/logger"
	"github.com/phillip/culture-events-go/metrics"
	models "github.com/phillip/culture-events-go/models"
	"github.com/phillip/culture-events-go/status"
	store "github.com/phillip/culture-events-go/store"
	utils "github.com/phillip/culture-events-go/utils"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

// priceOrder resolves the ticket type on the event and computes the total.
// Events that sell through external platforms carry no ticket types; the
// client total is taken as given for those and the returned type is nil.
func priceOrder(ev *models.Event, ticketType string, quantity int, clientTotal *models.Money) (*models.TicketType, models.Money, error) {
	if len(ev.TicketTypes) == 0 {
		if clientTotal == nil {
			return nil, models.Money{}, status.Invalid("total_amount is required for this event")
		}
		return nil, *clientTotal, nil
	}
	for _, tt := range ev.TicketTypes {
		if tt.ID == ticketType || strings.EqualFold(tt.Name, ticketType) {
			if !tt.Available {
				return nil, models.Money{}, status.Invalid("ticket type %q is sold out", tt.Name)
			}
			if tt.Capacity > 0 && tt.Sold+quantity > tt.Capacity {
				left := max(tt.Capacity-tt.Sold, 0)
				if left == 0 {
					return nil, models.Money{}, status.Invalid("ticket type %q is sold out", tt.Name)
				}
				return nil, models.Money{}, status.Invalid("only %d %q tickets left", left, tt.Name)
			}
			total := tt.Price.Mul(decimal.NewFromInt(int64(quantity)))
			return &tt, models.NewMoney(total), nil
		}
	}
	return nil, models.Money{}, status.Invalid("unknown ticket type %q", ticketType)
}

// releaseSeats undoes a reservation for an order that was not written.
func releaseSeats(ctx context.Context, env *Env, eventID primitive.ObjectID, ticketType string, quantity int) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), docTimeout)
	defer cancel()
	if err := env.Events.ReleaseTickets(rctx, eventID, ticketType, quantity); err != nil {
		logger.Log.Error("[orders] could not release reserved tickets", "event", eventID.Hex(), "ticket_type", ticketType, "error", err)
	}
}

// ---------------- CREATE ----------------
func CreateOrder(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			EventID     string        `json:"event_id" binding:"required"`
			Email       string        `json:"email" binding:"required"`
			Name        string        `json:"name" binding:"required"`
			TicketType  string        `json:"ticket_type" binding:"required"`
			Quantity    int           `json:"quantity" binding:"required"`
			TotalAmount *models.Money `json:"total_amount"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields: event_id, email, name, ticket_type, quantity"})
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if len(key) > maxIdempotencyKeyLen {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s must be at most %d characters", IdempotencyKeyHeader, maxIdempotencyKeyLen)})
			return
		}

		eventID, err := primitive.ObjectIDFromHex(input.EventID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
			return
		}

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		ev, err := env.Events.GetByID(ctx, eventID)
		if err != nil {
			respondError(c, err, "event", "fetch")
			return
		}
		if ev.Classify(env.Now(), env.Policy) != models.ClassUpcoming {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tickets for this event are not on sale"})
			return
		}

		tt, total, err := priceOrder(ev, input.TicketType, input.Quantity, input.TotalAmount)
		if err != nil {
			respondError(c, err, "order", "create")
			return
		}
		ticketType := input.TicketType
		if tt != nil {
			ticketType = tt.Name
			if input.Quantity < 1 || input.Quantity > store.MaxTicketsPerOrder {
				respondError(c, status.Invalid("quantity must be between 1 and %d", store.MaxTicketsPerOrder), "order", "create")
				return
			}
			if err := env.Events.ReserveTickets(ctx, eventID, *tt, input.Quantity); err != nil {
				respondError(c, err, "order", "create")
				return
			}
		}

		order := models.Order{
			EventID:        eventID,
			Email:          input.Email,
			Name:           input.Name,
			TicketType:     ticketType,
			Quantity:       input.Quantity,
			TotalAmount:    total,
			IdempotencyKey: key,
		}
		tickets, replayed, err := env.Orders.CreateWithTickets(ctx, &order)
		if tt != nil && (err != nil || replayed) {
			releaseSeats(ctx, env, eventID, tt.Name, input.Quantity)
		}
		if err != nil {
			respondError(c, err, "order", "create")
			return
		}

		metrics.OrdersCreated.WithLabelValues(strconv.FormatBool(replayed)).Inc()
		if replayed {
			logger.Log.Info("[orders] replayed idempotent request", "order", order.OrderNumber)
			c.JSON(http.StatusOK, gin.H{"order": order, "tickets": tickets, "message": "Order already created"})
			return
		}
		metrics.TicketsIssued.Add(float64(len(tickets)))
		logger.Log.Info("[orders] created", "order", order.OrderNumber, "tickets", len(tickets))

		c.JSON(http.StatusCreated, gin.H{
			"order":   order,
			"tickets": tickets,
			"message": "Order created successfully. Proceed to payment.",
		})
	}
}

// ---------------- CONFIRM ----------------
func ConfirmOrder(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			OrderID         string `json:"order_id"`
			OrderNumber     string `json:"order_number"`
			PaymentIntentID string `json:"payment_intent_id"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ref := input.OrderNumber
		if ref == "" {
			ref = input.OrderID
		}
		if ref == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order_number or order_id is required"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		order, err := env.Orders.Confirm(ctx, ref, input.PaymentIntentID)
		if err != nil {
			respondError(c, err, "order", "confirm")
			return
		}
		tickets, err := env.Tickets.FindByOrder(ctx, order.ID)
		if err != nil {
			respondError(c, err, "tickets", "fetch")
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order, "tickets": tickets, "message": "Order confirmed"})
	}
}

// lookupOrder reads order_number and email from the query and writes the
// error response itself.
func lookupOrder(c *gin.Context, env *Env) (*models.Order, []models.Ticket, bool) {
	number := c.Query("order_number")
	email := c.Query("email")
	if number == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_number and email are required"})
		return nil, nil, false
	}

	ctx, cancel := withTimeout(c, docTimeout)
	defer cancel()

	order, err := env.Orders.LookupByNumber(ctx, number, email)
	if err != nil {
		respondError(c, err, "order", "fetch")
		return nil, nil, false
	}
	tickets, err := env.Tickets.FindByOrder(ctx, order.ID)
	if err != nil {
		respondError(c, err, "tickets", "fetch")
		return nil, nil, false
	}
	return order, tickets, true
}

// ---------------- LOOKUP ----------------
func LookupOrder(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, tickets, ok := lookupOrder(c, env)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order, "tickets": tickets})
	}
}

// ---------------- TICKETS PDF ----------------
func OrderTicketsPDF(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, tickets, ok := lookupOrder(c, env)
		if !ok {
			return
		}
		if len(tickets) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "order has no tickets"})
			return
		}

		ctx, cancel := withTimeout(c, docTimeout)
		defer cancel()

		ev, err := env.Events.GetByID(ctx, order.EventID)
		if err != nil {
			respondError(c, err, "event", "fetch")
			return
		}

		pdf, err := utils.RenderTicketsPDF(ev, order, tickets)
		if err != nil {
			respondError(c, err, "tickets pdf", "render")
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, order.OrderNumber))
		c.Data(http.StatusOK, "application/pdf", pdf)
	}
}

// ---------------- LIST (admin) ----------------
func AdminListOrders(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter store.OrderFilter
		if raw := c.Query("event_id"); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
				return
			}
			filter.EventID = id
		}
		filter.Status = c.Query("status")

		ctx, cancel := withTimeout(c, listTimeout)
		defer cancel()

		orders, err := env.Orders.List(ctx, filter)
		if err != nil {
			respondError(c, err, "orders", "fetch")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}
