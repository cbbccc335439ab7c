package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HammerMeetNail/slotswap/internal/handlers"
	"github.com/HammerMeetNail/slotswap/internal/middleware"
	"github.com/HammerMeetNail/slotswap/internal/models"
	"github.com/HammerMeetNail/slotswap/internal/services"
)

type stubAuth struct {
	user *models.User
}

func (s *stubAuth) HashPassword(password string) (string, error) { return password, nil }
func (s *stubAuth) VerifyPassword(hash, password string) bool { return hash == password }
func (s *stubAuth) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	return "tok", nil
}
func (s *stubAuth) DeleteSession(ctx context.Context, token string) error { return nil }
func (s *stubAuth) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if token == "good" {
		return s.user, nil
	}
	return nil, services.ErrSessionNotFound
}

type stubUsers struct{}

func (stubUsers) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return nil, services.ErrEmailAlreadyExists
}
func (stubUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, services.ErrUserNotFound
}
func (stubUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, services.ErrUserNotFound
}

type healthy struct{}

func (healthy) Health(ctx context.Context) error { return nil }

type stubSwaps struct {
	services.SwapServiceInterface
}

func (stubSwaps) ListMySlots(ctx context.Context, userID uuid.UUID) ([]*models.Slot, error) {
	return []*models.Slot{{ID: uuid.New(), UserID: userID, Status: models.SlotStatusBusy}}, nil
}

func (stubSwaps) GetSwapRequest(ctx context.Context, userID, requestID uuid.UUID) (*models.SwapRequest, error) {
	return nil, services.ErrSwapRequestNotFound
}

func newTestApp(user *models.User) *app {
	auth := &stubAuth{user: user}
	swaps := stubSwaps{}
	return &app{
		health:      handlers.NewHealthHandler(healthy{}, healthy{}),
		auth:        handlers.NewAuthHandler(stubUsers{}, auth, false, time.Hour),
		slots:       handlers.NewSlotHandler(swaps),
		swaps:       handlers.NewSwapHandler(swaps),
		events:      handlers.NewEventsHandler(services.NewRedisEventBus(nil)),
		authMW:      middleware.NewAuthMiddleware(auth),
		authLimit:   middleware.NewAuthRateLimiter(nil),
		swapLimit:   middleware.NewSwapRateLimiter(nil, 10, time.Minute),
		security:    middleware.NewSecurityHeaders(false),
		requestLogs: middleware.NewRequestLogger(nil),
	}
}

func TestRoutes_Public(t *testing.T) {
	h := newTestApp(nil).routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoutes_RequireSession(t *testing.T) {
	h := newTestApp(nil).routes()

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/slots"},
		{http.MethodPost, "/api/slots"},
		{http.MethodGet, "/api/slots/swappable"},
		{http.MethodPut, "/api/slots/" + uuid.NewString() + "/swappable"},
		{http.MethodDelete, "/api/slots/" + uuid.NewString()},
		{http.MethodPost, "/api/swaps"},
		{http.MethodGet, "/api/swaps/incoming"},
		{http.MethodGet, "/api/swaps/outgoing"},
		{http.MethodGet, "/api/swaps/" + uuid.NewString()},
		{http.MethodPost, "/api/swaps/" + uuid.NewString() + "/respond"},
		{http.MethodGet, "/api/events"},
		{http.MethodGet, "/api/auth/me"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(route.method, route.path, strings.NewReader("{}")))
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRoutes_Authenticated(t *testing.T) {
	user := &models.User{ID: uuid.New(), DisplayName: "Alice"}
	h := newTestApp(user).routes()

	req := httptest.NewRequest(http.MethodGet, "/api/slots", nil)
	req.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), user.ID.String())

	req = httptest.NewRequest(http.MethodGet, "/api/swaps/"+uuid.NewString(), nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "good"})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutes_UnknownMethod(t *testing.T) {
	h := newTestApp(nil).routes()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/slots", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
