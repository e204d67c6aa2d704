package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/whisperwall/internal/apperror"
	"github.com/sakif/whisperwall/internal/auth"
	"github.com/sakif/whisperwall/internal/service"
)

// User-facing login failure messages. These two strings are the only
// difference between the failure cases — same status, same form, same
// response shape.
const (
	msgUnknownUsername = "Username does not exist."
	msgWrongPassword   = "Incorrect username or password."
)

// AuthHandler manages registration, local login/logout, and the Google
// sign-in flow.
type AuthHandler struct {
	authSvc  *service.AuthService
	sessions *auth.SessionManager
	google   *auth.GoogleProvider // nil when Google sign-in is not configured
	states   *auth.StateTokens
	render   *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. google and states may be nil when
// Google sign-in is disabled; the server then doesn't mount those routes.
func NewAuthHandler(
	authSvc *service.AuthService,
	sessions *auth.SessionManager,
	google *auth.GoogleProvider,
	states *auth.StateTokens,
	render *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authSvc:  authSvc,
		sessions: sessions,
		google:   google,
		states:   states,
		render:   render,
		logger:   logger,
	}
}

// HandleLogin verifies a local login and establishes the session.
//
// HTTP: POST /login (form fields: username, password)
//
// On failure the form is re-rendered with the submitted values echoed and
// the matching message; on success the browser lands on /secrets.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	account, err := h.authSvc.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrUnknownUsername):
			h.render.Render(w, "login", loginFormData{
				Username:      username,
				Password:      password,
				ErrorMessage:  msgUnknownUsername,
				GoogleEnabled: h.google != nil,
			})
		case errors.Is(err, apperror.ErrCredentialMismatch):
			h.render.Render(w, "login", loginFormData{
				Username:      username,
				Password:      password,
				ErrorMessage:  msgWrongPassword,
				GoogleEnabled: h.google != nil,
			})
		default:
			h.logger.Error("login: storage failure", slog.String("error", err.Error()))
			h.render.RenderError(w)
		}
		return
	}

	// Session establishment is a hard failure: do NOT redirect onward as if
	// authenticated when no session was written.
	if err := h.sessions.Establish(w, r, account); err != nil {
		h.logger.Error("login: establishing session", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// HandleRegister creates an account and logs it straight in.
//
// HTTP: POST /register (form fields: username, password)
//
// Duplicate or invalid input bounces back to the registration form; a
// storage failure is an explicit error, never a fake success.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	account, err := h.authSvc.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrValidation) {
			h.logger.Info("registration rejected", slog.String("username", username))
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		h.logger.Error("register: storage failure", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	if err := h.sessions.Establish(w, r, account); err != nil {
		h.logger.Error("register: establishing session", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}

// HandleLogout destroys the session and returns to the landing page.
//
// HTTP: GET /logout
//
// Idempotent — logging out with no active session is not an error.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(w, r); err != nil {
		h.logger.Error("logout: clearing session", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGoogleLogin starts the Google authorization-code flow.
//
// HTTP: GET /auth/google
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := h.states.Issue()
	if err != nil {
		h.logger.Error("google login: issuing state", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the Google sign-in.
//
// HTTP: GET /auth/google/secrets?code=xxx&state=yyy
//
// Every authentication-flow failure recovers to the login form; only a
// session write failure after a good exchange is a hard error.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.states.Validate(r.URL.Query().Get("state")); err != nil {
		h.logger.Warn("google callback: bad state", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	account, err := h.authSvc.LoginOrRegisterGoogle(r.Context(), gUser)
	if err != nil {
		h.logger.Error("google callback: resolving account", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.sessions.Establish(w, r, account); err != nil {
		h.logger.Error("google callback: establishing session", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}
