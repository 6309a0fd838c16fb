package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/repository/memory"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type testAPI struct {
	store  *memory.Store
	tokens security.TokenManager
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := memory.NewStore()
	tm := security.NewTokenManager("test-secret", "agrirent-test")
	svc := Services{
		Reservations:  service.NewReservationService(store.Equipment, store.Bookings, service.WithClock(clock)),
		Lifecycle:     service.NewLifecycleService(store.Equipment, store.Bookings, service.WithLifecycleClock(clock)),
		Equipment:     service.NewEquipmentService(store.Equipment),
		Bookings:      service.NewBookingQueryService(store.Bookings, store.Equipment),
		Notifications: service.NewNotificationService(store.Notifications),
	}
	return &testAPI{store: store, tokens: tm, router: NewRouter(svc, tm, 15*time.Minute)}
}

func (a *testAPI) token(t *testing.T, userID uuid.UUID, roles ...string) string {
	t.Helper()
	tok, err := a.tokens.GenerateAccessToken(userID, "user@example.com", roles)
	require.NoError(t, err)
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) seed(t *testing.T, ownerID uuid.UUID, priceCents int64) *domain.Equipment {
	t.Helper()
	e := &domain.Equipment{OwnerID: ownerID, Category: "Tractor", DailyPriceCents: priceCents, Condition: 7, Available: true, ForRent: true, State: "Punjab"}
	require.NoError(t, a.store.Equipment.Create(context.Background(), e))
	return e
}

func TestHealthIsPublic(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	item := api.seed(t, uuid.New(), 500)

	rec := api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/reservations", "",
		reserveRequest{StartDate: "2024-03-01", EndDate: "2024-03-03"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/reservations", "garbage",
		reserveRequest{StartDate: "2024-03-01", EndDate: "2024-03-03"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminReportRequiresRole(t *testing.T) {
	api := newTestAPI(t)
	user := uuid.New()

	rec := api.do(t, http.MethodGet, "/api/v1/admin/consistency", api.token(t, user), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/admin/consistency", api.token(t, user, security.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.ConsistencyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Clean())
}

func TestReserveAndComplete(t *testing.T) {
	api := newTestAPI(t)
	owner, renter := uuid.New(), uuid.New()
	item := api.seed(t, owner, 200)
	reservePath := "/api/v1/equipment/" + item.ID.String() + "/reservations"

	rec := api.do(t, http.MethodPost, reservePath, api.token(t, renter),
		reserveRequest{StartDate: "2024-06-10", EndDate: "2024-06-12"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res reservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Delist)
	assert.Equal(t, int64(600), res.Booking.CostCents)
	assert.Equal(t, "2024-06-10", res.Booking.StartDate)
	assert.Equal(t, "pending", res.Booking.Status)

	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+item.ID.String()+"/bookable", "", nil)
	assert.JSONEq(t, `{"bookable":false}`, rec.Body.String())

	rec = api.do(t, http.MethodPost, reservePath, api.token(t, uuid.New()),
		reserveRequest{StartDate: "2024-06-10", EndDate: "2024-06-12"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/me/rentals", api.token(t, renter), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rentals struct {
		Bookings []dashboardBookingResponse `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rentals))
	require.Len(t, rentals.Bookings, 1)
	assert.Equal(t, res.Booking.ID, rentals.Bookings[0].ID)
	require.NotNil(t, rentals.Bookings[0].Equipment)
	assert.Equal(t, item.ID.String(), rentals.Bookings[0].Equipment.ID)
	assert.Equal(t, item.Category, rentals.Bookings[0].Equipment.Category)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/complete", api.token(t, renter), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/complete", api.token(t, owner), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/complete", api.token(t, owner), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReserveRejectsBadInput(t *testing.T) {
	api := newTestAPI(t)
	item := api.seed(t, uuid.New(), 200)
	tok := api.token(t, uuid.New())

	rec := api.do(t, http.MethodPost, "/api/v1/equipment/not-a-uuid/reservations", tok,
		reserveRequest{StartDate: "2024-06-10", EndDate: "2024-06-12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/reservations", tok,
		reserveRequest{StartDate: "10/06/2024", EndDate: "2024-06-12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/reservations", tok,
		reserveRequest{StartDate: "2024-06-12", EndDate: "2024-06-10"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment/"+uuid.NewString()+"/reservations", tok,
		reserveRequest{StartDate: "2024-06-10", EndDate: "2024-06-12"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsertFailureReturnsServiceUnavailable(t *testing.T) {
	api := newTestAPI(t)
	item := api.seed(t, uuid.New(), 200)
	api.store.FailNext(memory.OpInsertBooking, errors.New("injected"))

	rec := api.do(t, http.MethodPost, "/api/v1/equipment/"+item.ID.String()+"/reservations", api.token(t, uuid.New()),
		reserveRequest{StartDate: "2024-06-10", EndDate: "2024-06-12"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "warning")

	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+item.ID.String()+"/bookable", "", nil)
	assert.JSONEq(t, `{"bookable":true}`, rec.Body.String())
}

func TestRegisterAndSearch(t *testing.T) {
	api := newTestAPI(t)
	owner := uuid.New()
	tok := api.token(t, owner)

	rec := api.do(t, http.MethodPost, "/api/v1/equipment", tok, map[string]any{
		"category": "Harvester", "daily_price_cents": 150000, "condition": 9, "for_rent": true, "state": "Punjab",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Equipment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, owner, created.OwnerID)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment", tok, map[string]any{"category": "Harvester", "condition": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/equipment?category=Harvester&max_price_cents=200000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID.String())

	rec = api.do(t, http.MethodGet, "/api/v1/equipment?max_price_cents=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/me/equipment", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID.String())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidDateRange, http.StatusBadRequest},
		{domain.ErrValidation, http.StatusUnprocessableEntity},
		{domain.ErrNotAuthenticated, http.StatusUnauthorized},
		{domain.ErrSelfBooking, http.StatusForbidden},
		{domain.ErrNoActiveBooking, http.StatusNotFound},
		{domain.ErrReservationRaceLost, http.StatusConflict},
		{domain.ErrNotForRent, http.StatusConflict},
		{fmt.Errorf("%w: disk", domain.ErrBookingCreateFailed), http.StatusServiceUnavailable},
		{errors.Join(domain.ErrBookingCreateFailed, domain.ErrCompensationFailed), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestCompensationFailureCarriesWarning(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/equipment/x/reservations", nil)
	writeError(rec, req, errors.Join(domain.ErrBookingCreateFailed, domain.ErrCompensationFailed))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, compensationWarning, body.Warning)
}
