package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userKey returns the authenticated subject as a string for use in
// rate-limit keys, or "anon" when the request carries no identity.
// JSON numbers in claims arrive as float64 and are printed without
// exponent.
func userKey(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case nil:
		return "anon"
	case string:
		if v == "" {
			return "anon"
		}
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}
