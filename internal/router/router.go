package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/campus-lending/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/campus-lending/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Route group under /v1/auth for operations that do not require an
	// existing session (register, login, refresh).  Each of these
	// handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication.  The handler accepts a
	// JSON body containing a `refresh_token` and will invalidate that
	// token; with only an Authorization header it revokes all sessions.
	g.POST("/logout", a.Logout)

	// Protected group: all handlers registered here execute the JWTAuth
	// middleware before being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	// Also map POST /v1/logout outside the protected group so clients
	// can terminate a session with just a refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  These
// return listing data and seasonal recommendations for guest users; no
// JWT middleware is applied.  Extra middleware (such as the response
// cache) can be passed in and applies to these routes only.
func RegisterPublic(e *echo.Echo, items *handler.ItemHandler, rec *handler.RecommendationHandler, mw ...echo.MiddlewareFunc) {
	// Browse all listings with optional category/search/available filters
	e.GET("/v1/items", items.List, mw...)
	// Inspect a single listing
	e.GET("/v1/items/:id", items.Get, mw...)
	// Seasonal recommendations for the current academic period
	e.GET("/v1/recommendations", rec.Get, mw...)
}

// RegisterLending registers the authenticated lending surface: item
// management, the borrow request lifecycle and item-scoped messaging.
// Every route requires a valid access token.
func RegisterLending(e *echo.Echo, items *handler.ItemHandler, borrow *handler.BorrowHandler, messages *handler.MessageHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))

	// Item management for owners
	g.POST("/items", items.Create)
	g.PATCH("/items/:id", items.Update)
	g.DELETE("/items/:id", items.Delete)
	g.GET("/my/items", items.ListMine)

	// Borrow lifecycle
	g.POST("/items/:id/borrow", borrow.Create)
	g.GET("/borrow/mine", borrow.ListMine)
	g.GET("/borrow/incoming", borrow.ListIncoming)
	g.GET("/borrow/:id", borrow.Get)
	g.POST("/borrow/:id/approve", borrow.Approve)
	g.POST("/borrow/:id/reject", borrow.Reject)
	g.POST("/borrow/:id/cancel", borrow.Cancel)
	g.POST("/borrow/:id/mark-picked-up", borrow.MarkPickedUp)
	g.POST("/borrow/:id/mark-returned", borrow.MarkReturned)

	// Messaging
	g.POST("/items/:id/messages", messages.Send)
	g.GET("/items/:id/messages", messages.Thread)
	g.GET("/conversations", messages.Conversations)
}
