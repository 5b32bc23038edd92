package api

import (
	"database/sql"
	"net/http"

	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
)

// NewRouter creates the API router with all endpoints registered. Write
// handlers broadcast on the feed so live list subscriptions re-query;
// onLogout is invoked with the JTI of every signed-out session.
func NewRouter(db *sql.DB, jwtSecret string, feed *inventory.Feed, onLogout func(jti string)) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, OnLogout: onLogout}
	usersHandler := &UsersHandler{DB: db}
	recordsHandler := &RecordsHandler{DB: db, Feed: feed}
	exportHandler := &ExportHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// User management (admin only).
	mux.Handle("POST /api/auth/register", authMW(requireAdmin(http.HandlerFunc(authHandler.Register))))
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Records: cursor-paginated raw list plus single-record access.
	mux.Handle("GET /api/records", authMW(http.HandlerFunc(recordsHandler.List)))
	mux.Handle("GET /api/records/count", authMW(http.HandlerFunc(recordsHandler.Count)))
	mux.Handle("GET /api/records/{id}", authMW(http.HandlerFunc(recordsHandler.Get)))
	mux.Handle("PUT /api/records/{id}/photo", authMW(http.HandlerFunc(recordsHandler.UploadPhoto)))
	mux.Handle("GET /api/records/{id}/photo", authMW(http.HandlerFunc(recordsHandler.GetPhoto)))

	// Groups: the display projection and atomic group writes.
	mux.Handle("GET /api/groups", authMW(http.HandlerFunc(recordsHandler.ListGroups)))
	mux.Handle("POST /api/groups", authMW(http.HandlerFunc(recordsHandler.CreateGroup)))
	mux.Handle("PUT /api/groups", authMW(http.HandlerFunc(recordsHandler.UpdateGroup)))
	mux.Handle("DELETE /api/groups", authMW(http.HandlerFunc(recordsHandler.DeleteGroup)))

	// Exports.
	mux.Handle("GET /api/export/pdf", authMW(http.HandlerFunc(exportHandler.PDF)))
	mux.Handle("GET /api/export/xlsx", authMW(http.HandlerFunc(exportHandler.XLSX)))

	return mux
}
