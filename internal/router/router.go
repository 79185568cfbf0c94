// Package router maps HTTP routes to handlers and applies the
// middleware chain: JWT verification, role enforcement and rate
// limiting on booking traffic.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/avialta/airline-reservation/internal/config"
    "github.com/avialta/airline-reservation/internal/handler"
    "github.com/avialta/airline-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse endpoints.
// Guests can search flights and inspect seat maps before signing in
// to book.
func RegisterPublic(e *echo.Echo, h *handler.BrowseHandler) {
    e.GET("/v1/flights", h.SearchFlights)
    e.GET("/v1/flights/:id/seats", h.GetSeatMap)
}

// RegisterCustomer registers the booking endpoints under /v1. All
// routes require a valid JWT with the CUSTOMER role; the token-bucket
// limiter sheds abusive booking traffic before it reaches the
// saga.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin),
        middleware.NewTokenBucket(rlCfg, rdb),
    )
    g.POST("/flights/:id/reservations", h.CreateReservation)
    g.GET("/reservations", h.ListMyReservations)
    g.GET("/reservations/:id", h.GetReservation)
    g.POST("/reservations/:id/confirm", h.ConfirmReservation)
    g.POST("/reservations/:id/cancel", h.CancelReservation)
}

// RegisterAdmin registers fleet and schedule management under
// /v1/admin, restricted to the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleAdmin),
    )
    g.POST("/aircraft", h.CreateAircraft)
    g.GET("/aircraft", h.ListAircraft)
    g.DELETE("/aircraft/:id", h.DeleteAircraft)
    g.POST("/flights", h.CreateFlight)
    g.PATCH("/flights/:id/status", h.UpdateFlightStatus)
}
