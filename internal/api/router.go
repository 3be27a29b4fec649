package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/diamondbase/internal/ledger"
	"github.com/erazemk/diamondbase/internal/metrics"
)

// NewRouter creates the API router with all endpoints registered. Reads are
// public; anything that acts as an account requires a bearer token.
func NewRouter(l *ledger.Ledger, db *sql.DB, jwtSecret string, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	accountsHandler := &AccountsHandler{Ledger: l}
	rolesHandler := &RolesHandler{Ledger: l}
	ownershipHandler := &OwnershipHandler{Ledger: l}
	itemsHandler := &ItemsHandler{Ledger: l}
	transitionsHandler := &TransitionsHandler{Ledger: l}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Accounts: open and list (owner), read (public), transfer (any account).
	mux.Handle("POST /api/accounts", authMW(http.HandlerFunc(accountsHandler.Create)))
	mux.Handle("GET /api/accounts", authMW(http.HandlerFunc(accountsHandler.List)))
	mux.HandleFunc("GET /api/accounts/{address}", accountsHandler.Get)
	mux.Handle("POST /api/transfers", authMW(http.HandlerFunc(accountsHandler.Transfer)))

	// Administrative ownership.
	mux.HandleFunc("GET /api/owner", ownershipHandler.Get)
	mux.Handle("PUT /api/owner", authMW(http.HandlerFunc(ownershipHandler.Transfer)))
	mux.Handle("DELETE /api/owner", authMW(http.HandlerFunc(ownershipHandler.Renounce)))
	mux.Handle("POST /api/destroy", authMW(http.HandlerFunc(ownershipHandler.Destroy)))

	// Roles.
	mux.HandleFunc("GET /api/roles/{role}/members", rolesHandler.Members)
	mux.HandleFunc("GET /api/roles/{role}/members/{address}", rolesHandler.Check)
	mux.Handle("POST /api/roles/{role}/members", authMW(http.HandlerFunc(rolesHandler.Add)))
	mux.Handle("DELETE /api/roles/{role}/members/me", authMW(http.HandlerFunc(rolesHandler.Renounce)))

	// Items.
	mux.HandleFunc("GET /api/states", transitionsHandler.States)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Mine)))
	mux.HandleFunc("GET /api/items/{upc}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{upc}/buffer/one", itemsHandler.BufferOne)
	mux.HandleFunc("GET /api/items/{upc}/buffer/two", itemsHandler.BufferTwo)
	mux.HandleFunc("GET /api/items/{upc}/events", itemsHandler.Events)
	mux.HandleFunc("GET /api/items/{upc}/hash", itemsHandler.ReadHash)
	mux.Handle("PUT /api/items/{upc}/hash", authMW(http.HandlerFunc(itemsHandler.UploadHash)))
	mux.HandleFunc("GET /api/items/{upc}/image", itemsHandler.GetImage)
	mux.Handle("PUT /api/items/{upc}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))

	// Lifecycle transitions.
	mux.Handle("POST /api/items/{upc}/{operation}", authMW(http.HandlerFunc(transitionsHandler.Apply)))

	mux.Handle("GET /metrics", m.Handler())

	return mux
}
