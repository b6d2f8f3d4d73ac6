package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/config"
)

func TestLocalResponseCache(t *testing.T) {
	cfg := config.CacheConfig{
		Enabled:       true,
		LocalFallback: true,
		Methods:       map[string]bool{http.MethodGet: true},
		TTL:           time.Minute,
		KeyStrategy:   "route_query",
		Prefix:        "slots",
		MaxBodyBytes:  1 << 16,
	}
	calls := 0
	e := echo.New()
	e.GET("/v1/bookings/available-slots", func(c echo.Context) error {
		calls++
		if c.QueryParam("table_id") == "0" {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
		}
		return c.JSON(http.StatusOK, echo.Map{"slots": []string{"10:00"}})
	}, NewResponseCache(cfg, nil))

	do := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bookings/available-slots?"+query, nil))
		return rec
	}

	first := do("date=2026-05-10&table_id=7")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := do("table_id=7&date=2026-05-10")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	do("date=2026-05-11&table_id=7")
	assert.Equal(t, 2, calls, "different query misses")

	do("date=2026-05-10&table_id=0")
	do("date=2026-05-10&table_id=0")
	assert.Equal(t, 4, calls, "errors are not cached")
}

func TestEncodeDecodePayload(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	require.NoError(t, err)
	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, `{"ok":true}`, string(body))

	_, _, _, ok = decodePayload([]byte{1, 2})
	assert.False(t, ok)
}
