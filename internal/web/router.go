package web

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/tilestock/tilestock/internal/inventory"
	webembed "github.com/tilestock/tilestock/web"
)

// NewRouter creates the web page router with all page routes registered.
// The returned Server owns the per-session pagination state; callers wire
// its DropSession into the API logout path so both surfaces tear down the
// same sessions.
func NewRouter(db *sql.DB, jwtSecret string, csrfKey []byte, feed *inventory.Feed) (http.Handler, *Server, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, nil, err
	}

	s := &Server{
		DB:        db,
		Templates: templates,
		JWTSecret: jwtSecret,
		Feed:      feed,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /register", s.RegisterPage)
	mux.HandleFunc("POST /register", s.RegisterSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.InventoryPage)))

	mux.Handle("GET /groups/new", cookieAuth(http.HandlerFunc(s.GroupNewPage)))
	mux.Handle("POST /groups", cookieAuth(http.HandlerFunc(s.GroupCreateSubmit)))
	mux.Handle("GET /groups/edit", cookieAuth(http.HandlerFunc(s.GroupEditPage)))
	mux.Handle("POST /groups/update", cookieAuth(http.HandlerFunc(s.GroupUpdateSubmit)))
	mux.Handle("POST /groups/delete", cookieAuth(http.HandlerFunc(s.GroupDeleteSubmit)))

	mux.Handle("POST /records/{id}/photo", cookieAuth(http.HandlerFunc(s.RecordPhotoSubmit)))
	mux.Handle("GET /records/{id}/photo", cookieAuth(http.HandlerFunc(s.RecordPhotoGet)))

	mux.Handle("GET /export/pdf", cookieAuth(http.HandlerFunc(s.ExportPDF)))
	mux.Handle("GET /export/xlsx", cookieAuth(http.HandlerFunc(s.ExportXLSX)))

	mux.Handle("GET /settings", cookieAuth(http.HandlerFunc(s.SettingsPage)))
	mux.Handle("POST /settings", cookieAuth(http.HandlerFunc(s.SettingsSubmit)))
	mux.Handle("POST /settings/password", cookieAuth(http.HandlerFunc(s.PasswordSubmit)))

	protect := csrf.Protect(csrfKey,
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteStrictMode),
	)
	return protect(mux), s, nil
}
