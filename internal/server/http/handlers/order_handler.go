package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/trattoria/internal/adapter/redisx"
	"github.com/polkiloo/trattoria/internal/domain/lifecycle"
	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/server/http/dto"
	"github.com/polkiloo/trattoria/internal/usecase"
)

const (
	idempotencyHeader  = "Idempotency-Key"
	idempotencyLockTTL = 30 * time.Second
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
	idem   IdempotencyStore
}

// NewOrderHandler constructs OrderHandler. idem may be nil.
func NewOrderHandler(facade OrderFacade, idem IdempotencyStore) *OrderHandler {
	return &OrderHandler{facade: facade, idem: idem}
}

// Submit handles POST /api/orders. A repeated Idempotency-Key replays the
// first successful response.
func (h *OrderHandler) Submit(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	actor := currentActor(c)
	ctx := c.Request.Context()

	idemKey := strings.TrimSpace(c.GetHeader(idempotencyHeader))
	var storageKey string
	if h.idem != nil && idemKey != "" {
		storageKey = redisx.KeyIdempotency(actor.StaffID, idemKey)
		if payload, ok := h.storedResult(c, storageKey); ok {
			replay(c, idemKey, payload)
			return
		}
		locked, err := h.idem.AcquireLock(ctx, storageKey, idempotencyLockTTL)
		if err != nil {
			respondErr(c, err)
			return
		}
		if !locked {
			if payload, ok := h.storedResult(c, storageKey); ok {
				replay(c, idemKey, payload)
				return
			}
			c.Header("Retry-After", "1")
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "idempotency key in progress"})
			return
		}
	}

	items := make([]usecase.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Note: it.Note})
	}
	order, err := h.facade.SubmitOrder(ctx, actor, usecase.SubmitRequest{
		TableID: req.TableID,
		StaffID: req.StaffID,
		Items:   items,
		Note:    req.Note,
	})
	if err != nil {
		if storageKey != "" {
			if err := h.idem.Release(ctx, storageKey); err != nil {
				_ = c.Error(fmt.Errorf("idempotency release: %w", err))
			}
		}
		respondErr(c, err)
		return
	}

	resp := toOrderResponse(*order)
	if storageKey != "" {
		b, err := json.Marshal(resp)
		if err == nil {
			err = h.idem.SaveResult(ctx, storageKey, string(b))
		}
		if err != nil {
			// The key stays locked until its TTL, so retries get 409 meanwhile.
			_ = c.Error(fmt.Errorf("idempotency save: %w", err))
		}
		c.Header(idempotencyHeader, idemKey)
	}
	c.JSON(http.StatusCreated, resp)
}

// storedResult looks up a saved response. Lookup failures are recorded on
// the request and treated as a miss.
func (h *OrderHandler) storedResult(c *gin.Context, key string) (string, bool) {
	payload, ok, err := h.idem.GetResult(c.Request.Context(), key)
	if err != nil {
		_ = c.Error(fmt.Errorf("idempotency lookup: %w", err))
		return "", false
	}
	return payload, ok
}

func replay(c *gin.Context, idemKey, payload string) {
	c.Header(idempotencyHeader, idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// List handles GET /api/orders. Status may repeat or be comma separated.
func (h *OrderHandler) List(c *gin.Context) {
	var filter model.OrderFilter
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, model.OrderStatus(strings.ToUpper(s)))
			}
		}
	}
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid table_id")
			return
		}
		filter.TableID = id
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "invalid limit")
			return
		}
		filter.Limit = n
	}

	orders, err := h.facade.Orders(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, err)
		return
	}
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, resp)
}

// Transition handles POST /api/orders/:id/transitions.
func (h *OrderHandler) Transition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tr := usecase.TransitionRequest{
		OrderID: id,
		Target:  model.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		Note:    req.Note,
	}
	if req.Payment != nil {
		tr.Payment = &lifecycle.PaymentInput{
			Method:   model.PaymentMethod(strings.ToUpper(req.Payment.Method)),
			Tendered: req.Payment.Tendered,
		}
	}

	order, err := h.facade.TransitionOrder(c.Request.Context(), currentActor(c), tr)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Discount handles POST /api/orders/:id/discount.
func (h *OrderHandler) Discount(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	order, err := h.facade.ApplyDiscount(c.Request.Context(), currentActor(c), id, req.Percentage, req.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
