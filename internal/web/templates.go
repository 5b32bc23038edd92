package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/tilestock/tilestock/internal/auth"
	"github.com/tilestock/tilestock/internal/inventory"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
	webembed "github.com/tilestock/tilestock/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleUser:
				return "User"
			default:
				return role
			}
		},
	}
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	// Read layout.
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"register.html",
		"inventory.html",
		"group_form.html",
		"settings.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title     string
	User      *auth.Claims
	Theme     string
	CSRFField template.HTML
	Error     string
	Success   string
}

// Server holds all dependencies for page handlers. It also owns the
// per-session pagination state: each signed-in session (keyed by its token's
// JTI) gets its own pager and subscription registry, created lazily on the
// first inventory page load and torn down on logout.
type Server struct {
	DB        *sql.DB
	Templates *Templates
	JWTSecret string
	Feed      *inventory.Feed

	mu       sync.Mutex
	sessions map[string]*session
}

// grouperFor builds the display-group projection for the given UI language.
func grouperFor(lang string) *inventory.Grouper {
	return inventory.NewGrouper(model.CollationTag(lang), model.SuffixLabeler(lang))
}

// language returns the configured UI language for the request.
func (s *Server) language(r *http.Request) string {
	lang, err := store.GetSetting(r.Context(), s.DB, store.SettingLanguage, model.LangEnglish)
	if err != nil {
		slog.Error("failed to read language setting", "error", err)
		return model.LangEnglish
	}
	return lang
}

// theme returns the configured UI theme for the request.
func (s *Server) theme(r *http.Request) string {
	theme, err := store.GetSetting(r.Context(), s.DB, store.SettingTheme, "light")
	if err != nil {
		slog.Error("failed to read theme setting", "error", err)
		return "light"
	}
	return theme
}
