package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/config"
	"github.com/iliyamo/restaurant-booking/internal/handler"
	"github.com/iliyamo/restaurant-booking/internal/model"
	"github.com/iliyamo/restaurant-booking/internal/repository"
	"github.com/iliyamo/restaurant-booking/internal/service"
	"github.com/iliyamo/restaurant-booking/internal/utils"
)

const secret = "router-test-secret"

type api struct {
	t *testing.T
	e *echo.Echo
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := repository.NewMemoryStore()
	store.PutTable(model.Table{ID: 7, Name: "T7", Capacity: 4, MinCapacity: 2, PricePerHour: 8000000, IsActive: true})
	store.PutMenuItem(model.MenuItem{ID: 1, Name: "Soup", Price: 300000, IsAvailable: true})
	store.PutUser(model.User{ID: 1, FullName: "Ann Guest", Email: "ann@example.com", Role: model.RoleCustomer})

	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := service.NewBookingService(store, service.WithClock(func() time.Time { return now }))

	e := echo.New()
	deps := Deps{
		Health:    &handler.HealthHandler{},
		Bookings:  handler.NewBookingHandler(svc),
		JWTSecret: secret,
		Cache:     config.CacheConfig{Enabled: false},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
	RegisterRoutes(e, deps)
	RegisterBookings(e, deps)
	return &api{t: t, e: e}
}

func token(t *testing.T, userID uint64, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, userID, role, 10)
	require.NoError(t, err)
	return tok.Token
}

func (a *api) do(method, path, tok string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAvailableSlotsIsPublic(t *testing.T) {
	a := newAPI(t)
	rec := a.do(http.MethodGet, "/v1/bookings/available-slots?date=2026-05-10&table_id=7&duration=120", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Slots []service.Slot `json:"slots"`
	}
	decode(t, rec, &out)
	assert.Len(t, out.Slots, 23)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/bookings/available-slots?date=2026-05-10&table_id=99", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/bookings/available-slots?date=2026-05-10&table_id=7&duration=30", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/bookings/available-slots?table_id=7", "", nil).Code)
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := newAPI(t)
	guest := token(t, 1, model.RoleCustomer)
	stranger := token(t, 5, model.RoleCustomer)
	staff := token(t, 2, model.RoleStaff)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/v1/bookings", "", nil).Code)

	rec := a.do(http.MethodPost, "/v1/bookings", guest, echo.Map{
		"table_id":            7,
		"start_time":          "2026-05-10T14:00:00Z",
		"end_time":            "2026-05-10T16:00:00Z",
		"guests_count":        2,
		"selected_menu_items": []echo.Map{{"menu_item_id": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Booking
	decode(t, rec, &created)
	assert.Equal(t, model.StatusPending, created.Status)
	assert.Equal(t, "40000.00", created.DepositAmount.String())
	assert.Equal(t, "86000.00", created.TotalAmount.String())
	assert.Equal(t, "Ann Guest", created.ContactName)
	var createdRaw struct {
		RemainingAmount string `json:"remaining_amount"`
		MenuItems       []struct {
			TotalPrice string `json:"total_price"`
		} `json:"menu_items"`
	}
	decode(t, rec, &createdRaw)
	assert.Equal(t, "46000.00", createdRaw.RemainingAmount)
	require.Len(t, createdRaw.MenuItems, 1)
	assert.Equal(t, "6000.00", createdRaw.MenuItems[0].TotalPrice)

	rec = a.do(http.MethodPost, "/v1/bookings", stranger, echo.Map{
		"table_id":     7,
		"start_time":   "2026-05-10T15:00:00Z",
		"end_time":     "2026-05-10T17:00:00Z",
		"guests_count": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/v1/bookings/" + strconv.FormatUint(created.ID, 10)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, stranger, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, guest, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, path+"/confirm", guest, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/bookings/999", staff, nil).Code)

	rec = a.do(http.MethodPost, path+"/confirm", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPut, path+"/menu-items/1", guest, echo.Map{"quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated model.Booking
	decode(t, rec, &updated)
	assert.Equal(t, "83000.00", updated.TotalAmount.String())
	assert.Contains(t, rec.Body.String(), `"remaining_amount":"43000.00"`)
	assert.Contains(t, rec.Body.String(), `"total_price":"3000.00"`)

	rec = a.do(http.MethodDelete, path+"/menu-items/1", guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path+"/menu-items/1", guest, nil).Code)

	rec = a.do(http.MethodPost, path+"/cancel", guest, echo.Map{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, rec.Code)
	var cancelled model.Booking
	decode(t, rec, &cancelled)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, "plans changed", cancelled.CancellationReason)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, path+"/activate", staff, nil).Code)

	rec = a.do(http.MethodGet, path+"/history", guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		History []model.BookingHistory `json:"history"`
	}
	decode(t, rec, &hist)
	assert.Len(t, hist.History, 3)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/v1/bookings/statistics", guest, nil).Code)
	rec = a.do(http.MethodGet, "/v1/bookings/statistics", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st model.BookingStats
	decode(t, rec, &st)
	assert.Equal(t, 1, st.Total)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, path, guest, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, staff, nil).Code)
}
