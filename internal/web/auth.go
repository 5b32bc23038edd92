package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/csrf"
	"golang.org/x/crypto/bcrypt"

	"github.com/tilestock/tilestock/internal/auth"
	"github.com/tilestock/tilestock/internal/model"
	"github.com/tilestock/tilestock/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{
		Title:     "Sign in",
		Theme:     s.theme(r),
		CSRFField: csrf.TemplateField(r),
	})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	fail := func(msg string) {
		s.Templates.Render(w, "login.html", &PageData{
			Title:     "Sign in",
			Theme:     s.theme(r),
			CSRFField: csrf.TemplateField(r),
			Error:     msg,
		})
	}

	if username == "" || password == "" {
		fail("Enter a username and password.")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil || user == nil || user.DeletedAt != nil {
		fail("Wrong username or password.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "username", username, "remote", r.RemoteAddr)
		fail("Wrong username or password.")
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		fail("Sign-in failed, try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry / time.Second),
	})

	slog.Info("user logged in", "user", user.Username)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &PageData{
		Title:     "Create account",
		Theme:     s.theme(r),
		CSRFField: csrf.TemplateField(r),
	})
}

// RegisterSubmit handles POST /register. New accounts get the regular user
// role; only an existing admin can promote them.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	fail := func(msg string) {
		s.Templates.Render(w, "register.html", &PageData{
			Title:     "Create account",
			Theme:     s.theme(r),
			CSRFField: csrf.TemplateField(r),
			Error:     msg,
		})
	}

	if username == "" || password == "" {
		fail("Enter a username and password.")
		return
	}
	if len(password) < 8 {
		fail("Password needs at least 8 characters.")
		return
	}
	if password != confirm {
		fail("Passwords do not match.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fail("Registration failed, try again.")
		return
	}

	user, err := store.CreateUser(r.Context(), s.DB, username, string(hash), model.RoleUser)
	if err != nil {
		fail("Username is already taken.")
		return
	}

	slog.Info("user registered", "user", user.Username)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout handles POST /logout. The token's JTI is revoked, the session's
// live pagination state is force-cleared, and the cookie is dropped.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil && claims.ID != "" {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.Expiry()); err != nil {
				slog.Error("failed to revoke token on logout", "error", err)
			}
			s.DropSession(claims.ID)
			slog.Info("user logged out", "user", claims.Username)
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
