package handler // handler defines http handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-booking/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// actorFrom builds the service actor from the identity JWTAuth stored.
func actorFrom(c echo.Context) (service.Actor, bool) {
	id, err := getUserID(c)
	if err != nil || id == 0 {
		return service.Actor{}, false
	}
	role, _ := c.Get("role").(string)
	return service.Actor{UserID: id, Role: role}, true
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// respondError maps service errors onto HTTP statuses.  Anything not
// recognised is logged and reported as 500 without details.
func respondError(c echo.Context, err error) error {
	var (
		verr *service.ValidationError
		nerr *service.NotFoundError
		cerr *service.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Reason})
	case errors.As(err, &nerr):
		return c.JSON(http.StatusNotFound, echo.Map{"error": nerr.Error()})
	case errors.As(err, &cerr):
		return c.JSON(http.StatusConflict, echo.Map{"error": cerr.Reason})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
