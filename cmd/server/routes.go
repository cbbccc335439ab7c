package main

import (
	"net/http"

	"github.com/HammerMeetNail/slotswap/internal/handlers"
	"github.com/HammerMeetNail/slotswap/internal/middleware"
)

type app struct {
	health      *handlers.HealthHandler
	auth        *handlers.AuthHandler
	slots       *handlers.SlotHandler
	swaps       *handlers.SwapHandler
	events      *handlers.EventsHandler
	authMW      *middleware.AuthMiddleware
	authLimit   *middleware.RateLimiter
	swapLimit   *middleware.RateLimiter
	security    *middleware.SecurityHeaders
	requestLogs *middleware.RequestLogger
}

func (a *app) routes() http.Handler {
	requireAuth := a.authMW.RequireAuth
	limitAuth := a.authLimit.Middleware
	limitSwap := func(h http.HandlerFunc) http.Handler {
		return requireAuth(a.swapLimit.Middleware(h))
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.health.Health)
	mux.HandleFunc("GET /ready", a.health.Ready)
	mux.HandleFunc("GET /live", a.health.Live)

	mux.Handle("POST /api/auth/register", limitAuth(http.HandlerFunc(a.auth.Register)))
	mux.Handle("POST /api/auth/login", limitAuth(http.HandlerFunc(a.auth.Login)))
	mux.HandleFunc("POST /api/auth/logout", a.auth.Logout)
	mux.Handle("GET /api/auth/me", authed(a.auth.Me))

	mux.Handle("POST /api/slots", authed(a.slots.Create))
	mux.Handle("GET /api/slots", authed(a.slots.List))
	mux.Handle("GET /api/slots/swappable", authed(a.slots.ListSwappable))
	mux.Handle("DELETE /api/slots/{id}", authed(a.slots.Delete))
	mux.Handle("PUT /api/slots/{id}/swappable", authed(a.slots.MakeSwappable))

	mux.Handle("POST /api/swaps", limitSwap(a.swaps.Propose))
	mux.Handle("GET /api/swaps/incoming", authed(a.swaps.ListIncoming))
	mux.Handle("GET /api/swaps/outgoing", authed(a.swaps.ListOutgoing))
	mux.Handle("GET /api/swaps/{id}", authed(a.swaps.Get))
	mux.Handle("POST /api/swaps/{id}/respond", limitSwap(a.swaps.Respond))

	mux.Handle("GET /api/events", authed(a.events.Stream))

	// Wrapped inside out. The access log runs after the session lookup so it can
	// record the user.
	var handler http.Handler = mux
	handler = a.security.Apply(handler)
	handler = a.requestLogs.Apply(handler)
	handler = a.authMW.Authenticate(handler)
	handler = middleware.RequestID(handler)
	return handler
}
