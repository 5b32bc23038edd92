package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"golang.org/x/crypto/bcrypt"

	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

// settingsData is the template payload of the settings page.
type settingsData struct {
	PageData
	Language string
	Themes   []string
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "settings.html", &settingsData{
		PageData: PageData{
			Title:     "Settings",
			User:      GetWebClaims(r.Context()),
			Theme:     s.theme(r),
			CSRFField: csrf.TemplateField(r),
		},
		Language: s.language(r),
		Themes:   []string{"light", "dark"},
	})
}

// SettingsSubmit handles POST /settings. Changing the language takes effect
// on the next render: suffix labels and variant collation are resolved per
// request from the stored setting.
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	if lang := r.FormValue("language"); lang == model.LangEnglish || lang == model.LangTurkish {
		if err := store.SetSetting(r.Context(), s.DB, store.SettingLanguage, lang); err != nil {
			slog.Error("failed to save language setting", "error", err)
		}
	}
	if theme := r.FormValue("theme"); theme == "light" || theme == "dark" {
		if err := store.SetSetting(r.Context(), s.DB, store.SettingTheme, theme); err != nil {
			slog.Error("failed to save theme setting", "error", err)
		}
	}

	slog.Info("settings updated", "user", claims.Username)
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// PasswordSubmit handles POST /settings/password.
func (s *Server) PasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	render := func(errMsg, okMsg string) {
		s.Templates.Render(w, "settings.html", &settingsData{
			PageData: PageData{
				Title:     "Settings",
				User:      claims,
				Theme:     s.theme(r),
				CSRFField: csrf.TemplateField(r),
				Error:     errMsg,
				Success:   okMsg,
			},
			Language: s.language(r),
			Themes:   []string{"light", "dark"},
		})
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	if current == "" || newPassword == "" {
		render("Enter your current and new password.", "")
		return
	}
	if len(newPassword) < 8 {
		render("The new password needs at least 8 characters.", "")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		render("Something went wrong, try again.", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		render("The current password is incorrect.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		render("Something went wrong, try again.", "")
		return
	}

	if err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		slog.Error("failed to update password", "error", err)
		render("Something went wrong, try again.", "")
		return
	}

	slog.Info("user changed own password", "user", claims.Username)
	render("", "Password updated.")
}
