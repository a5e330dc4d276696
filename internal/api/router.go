package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/pantrypal/internal/imaging"
	"github.com/erazemk/pantrypal/internal/pantry"
)

// Config holds the router's dependencies.
type Config struct {
	DB        *sql.DB
	JWTSecret string
	TokenTTL  time.Duration
	Pantry    *pantry.Service
	Photos    *imaging.Thumbnailer
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	photos := cfg.Photos
	if photos == nil {
		photos = imaging.NewThumbnailer(0, 0)
	}

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	accountHandler := &AccountHandler{DB: cfg.DB, Pantry: cfg.Pantry}
	itemsHandler := &ItemsHandler{DB: cfg.DB, Pantry: cfg.Pantry, Photos: photos}
	prefsHandler := &PrefsHandler{DB: cfg.DB}
	liveHandler := &LiveHandler{Pantry: cfg.Pantry}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)
	protected := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Account.
	mux.Handle("POST /api/auth/logout", protected(authHandler.Logout))
	mux.Handle("GET /api/account", protected(accountHandler.Get))
	mux.Handle("PUT /api/account/name", protected(accountHandler.UpdateName))
	mux.Handle("PUT /api/account/password", protected(accountHandler.ChangePassword))
	mux.Handle("DELETE /api/account", protected(accountHandler.Delete))

	// Items.
	mux.Handle("GET /api/items", protected(itemsHandler.List))
	mux.Handle("POST /api/items", protected(itemsHandler.Create))
	mux.Handle("GET /api/items/export", protected(itemsHandler.Export))
	mux.Handle("GET /api/items/live", protected(liveHandler.Serve))
	mux.Handle("DELETE /api/items/{id}", protected(itemsHandler.DeleteByID))
	mux.Handle("DELETE /api/items/by-name/{name}", protected(itemsHandler.DeleteByName))
	mux.Handle("PATCH /api/items/{id}/quantity", protected(itemsHandler.UpdateQuantity))
	mux.Handle("PUT /api/items/{id}/image", protected(itemsHandler.UploadImage))
	mux.Handle("GET /api/items/{id}/image", protected(itemsHandler.GetImage))

	// Preferences.
	mux.Handle("GET /api/prefs", protected(prefsHandler.Get))
	mux.Handle("PUT /api/prefs", protected(prefsHandler.Update))

	return mux
}
