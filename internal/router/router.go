package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/rezmor/todo-rest-api/internal/handler"
	"github.com/rezmor/todo-rest-api/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check used by load balancers.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers all authentication-related routes. Endpoints
// that mint or exchange tokens live under /v1/auth; /v1/me and logout
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, r *handler.ResetHandler, accessSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Exchanges the refresh cookie for a new access token; the refresh
	// token itself is not rotated on this path.
	g.POST("/refresh", a.Refresh)
	g.POST("/password-reset", r.Request)
	g.POST("/password-reset/confirm", r.Confirm)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(accessSecret))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout", a.Logout)
}

// RegisterOAuth registers the Google sign-in endpoints. Skipped entirely
// when OAuth credentials are not configured.
func RegisterOAuth(e *echo.Echo, o *handler.OAuthHandler) {
	if o == nil {
		return
	}
	e.GET("/v1/auth/google", o.GoogleLogin)
	e.GET("/v1/auth/google/callback", o.GoogleCallback)
}

// RegisterAPI registers the protected list/task/avatar endpoints. The
// cache middleware is applied to the two read-heavy GET collections; all
// cache keys include the authenticated user id.
func RegisterAPI(e *echo.Echo, l *handler.ListHandler, t *handler.TaskHandler, av *handler.AvatarHandler, accessSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(accessSecret))

	g.POST("/lists", l.Create)
	g.GET("/lists", l.GetAll, cache)
	g.GET("/lists/:id", l.Get)
	g.PATCH("/lists/:id", l.Update)
	g.DELETE("/lists/:id", l.Delete)

	g.POST("/lists/:id/tasks", t.Create)
	g.GET("/lists/:id/tasks", t.GetByList, cache)
	g.PATCH("/tasks/:id", t.Update)
	g.DELETE("/tasks/:id", t.Delete)

	g.POST("/me/avatar/presign", av.Presign)
	g.PUT("/me/avatar", av.Confirm)
}
