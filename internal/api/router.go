package api

import (
	"net/http"

	"github.com/erazemk/popis/internal/catalog"
	"github.com/erazemk/popis/internal/history"
	"github.com/erazemk/popis/internal/photo"
	"github.com/erazemk/popis/internal/store"
)

// Deps are the services the API handlers work on.
type Deps struct {
	Catalog   *catalog.Repository
	Store     *store.Store
	Photos    *photo.Store
	JWTSecret string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	recorder := history.NewRecorder(d.Store)

	authHandler := &AuthHandler{Store: d.Store, JWTSecret: d.JWTSecret}
	itemsHandler := &ItemsHandler{Catalog: d.Catalog, Store: d.Store, History: recorder}
	photosHandler := &PhotosHandler{Catalog: d.Catalog, Store: d.Store, Photos: d.Photos}
	categoriesHandler := &CategoriesHandler{Catalog: d.Catalog}
	locationsHandler := &LocationsHandler{Catalog: d.Catalog}
	statsHandler := &StatsHandler{Catalog: d.Catalog}
	settingsHandler := &SettingsHandler{Catalog: d.Catalog, Store: d.Store, History: recorder}

	authMW := AuthMiddleware(d.JWTSecret, d.Store)
	protect := func(h http.HandlerFunc) http.Handler { return authMW(h) }

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("POST /api/auth/logout", protect(authHandler.Logout))
	mux.Handle("PUT /api/auth/passcode", protect(authHandler.ChangePasscode))

	// Items.
	mux.Handle("GET /api/items", protect(itemsHandler.List))
	mux.Handle("POST /api/items", protect(itemsHandler.Create))
	mux.Handle("GET /api/items/recent", protect(itemsHandler.Recent))
	mux.Handle("POST /api/items/move", protect(itemsHandler.Move))
	mux.Handle("GET /api/items/{id}", protect(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", protect(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", protect(itemsHandler.Delete))

	// Photos.
	mux.Handle("POST /api/items/{id}/photos", protect(photosHandler.Upload))
	mux.Handle("DELETE /api/items/{id}/photos/{photoID}", protect(photosHandler.Remove))
	mux.Handle("GET /api/photos/{id}", protect(photosHandler.Get))

	// Categories.
	mux.Handle("GET /api/categories", protect(categoriesHandler.List))
	mux.Handle("POST /api/categories", protect(categoriesHandler.Create))
	mux.Handle("GET /api/categories/{id}", protect(categoriesHandler.Get))
	mux.Handle("PUT /api/categories/{id}", protect(categoriesHandler.Update))
	mux.Handle("DELETE /api/categories/{id}", protect(categoriesHandler.Delete))
	mux.Handle("GET /api/categories/{id}/stats", protect(statsHandler.Category))

	// Locations.
	mux.Handle("GET /api/locations", protect(locationsHandler.List))
	mux.Handle("POST /api/locations", protect(locationsHandler.Create))
	mux.Handle("GET /api/locations/{id}", protect(locationsHandler.Get))
	mux.Handle("PUT /api/locations/{id}", protect(locationsHandler.Update))
	mux.Handle("DELETE /api/locations/{id}", protect(locationsHandler.Delete))

	// Dashboard, export, history and settings.
	mux.Handle("GET /api/stats", protect(statsHandler.Summary))
	mux.Handle("GET /api/export", protect(statsHandler.Export))
	mux.Handle("GET /api/history", protect(settingsHandler.SearchHistory))
	mux.Handle("DELETE /api/history", protect(settingsHandler.ClearHistory))
	mux.Handle("GET /api/settings", protect(settingsHandler.Get))
	mux.Handle("PUT /api/settings", protect(settingsHandler.Update))
	mux.Handle("POST /api/reset", protect(settingsHandler.Reset))

	return mux
}
