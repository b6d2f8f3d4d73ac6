package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP.  All methods
// except AvailableSlots assume JWTAuth and RequireRole already ran.
type BookingHandler struct {
	Service *service.BookingService
}

// NewBookingHandler panics when svc is nil.
func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Service: svc}
}

// AvailableSlots handles GET /v1/bookings/available-slots.  Query
// parameters: date (YYYY-MM-DD), table_id and optional duration in
// minutes.
func (h *BookingHandler) AvailableSlots(c echo.Context) error {
	tableID, err := strconv.ParseUint(c.QueryParam("table_id"), 10, 64)
	if err != nil || tableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	duration := 0
	if raw := c.QueryParam("duration"); raw != "" {
		if duration, err = strconv.Atoi(raw); err != nil || duration <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid duration"})
		}
	}
	slots, err := h.Service.AvailableSlots(c.Request().Context(), tableID, date, duration)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":     date,
		"table_id": tableID,
		"slots":    slots,
	})
}

// Create handles POST /v1/bookings and returns 201 with the new booking.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var body service.CreateBookingInput
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TableID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id is required"})
	}
	if body.StartTime.IsZero() || body.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time are required"})
	}
	b, err := h.Service.Create(c.Request().Context(), actor, body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// List handles GET /v1/bookings.  Staff may filter by status and date;
// customers always see only their own bookings.
func (h *BookingHandler) List(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	f := model.BookingFilter{
		Status: model.Status(c.QueryParam("status")),
		Date:   c.QueryParam("date"),
	}
	list, err := h.Service.List(c.Request().Context(), actor, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// History handles GET /v1/bookings/:id/history.
func (h *BookingHandler) History(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	hist, err := h.Service.History(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"history": hist})
}

// Cancel handles POST /v1/bookings/:id/cancel.  The body is optional
// and may carry a reason.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&body); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
		}
	}
	b, err := h.Service.Cancel(c.Request().Context(), actor, id, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// AddMenuItem handles POST /v1/bookings/:id/menu-items.
func (h *BookingHandler) AddMenuItem(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body service.MenuItemInput
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.MenuItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "menu_item_id is required"})
	}
	b, err := h.Service.AddMenuItem(c.Request().Context(), actor, id, body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateMenuItem handles PUT /v1/bookings/:id/menu-items/:item_id.
func (h *BookingHandler) UpdateMenuItem(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	var body struct {
		Quantity int    `json:"quantity"`
		Notes    string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Service.SetMenuItemQuantity(c.Request().Context(), actor, id, itemID, body.Quantity, body.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// RemoveMenuItem handles DELETE /v1/bookings/:id/menu-items/:item_id.
func (h *BookingHandler) RemoveMenuItem(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	b, err := h.Service.RemoveMenuItem(c.Request().Context(), actor, id, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
