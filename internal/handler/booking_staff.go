package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/service"
)

type transitionFunc func(ctx context.Context, actor service.Actor, id uint64) (*model.Booking, error)

// runTransition parses the booking id and applies fn on behalf of the
// caller.  Role checks are repeated by the service.
func runTransition(c echo.Context, fn transitionFunc) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := fn(c.Request().Context(), actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Confirm handles POST /v1/bookings/:id/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return runTransition(c, h.Service.Confirm)
}

// Activate handles POST /v1/bookings/:id/activate.
func (h *BookingHandler) Activate(c echo.Context) error {
	return runTransition(c, h.Service.Activate)
}

// Complete handles POST /v1/bookings/:id/complete.
func (h *BookingHandler) Complete(c echo.Context) error {
	return runTransition(c, h.Service.Complete)
}

// NoShow handles POST /v1/bookings/:id/no-show.
func (h *BookingHandler) NoShow(c echo.Context) error {
	return runTransition(c, h.Service.MarkNoShow)
}

// Delete handles DELETE /v1/bookings/:id and returns 204.
func (h *BookingHandler) Delete(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Service.Delete(c.Request().Context(), actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Statistics handles GET /v1/bookings/statistics.
func (h *BookingHandler) Statistics(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	st, err := h.Service.Statistics(c.Request().Context(), actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
