package handler

import (
	"net/http"
)

// loginFormData is what the login template renders: the submitted values are
// echoed back on failure, exactly as the forms always behaved.
type loginFormData struct {
	Username      string
	Password      string
	ErrorMessage  string
	GoogleEnabled bool
}

// registerPageData feeds the registration template.
type registerPageData struct {
	GoogleEnabled bool
}

// PageHandler serves the public pages. These render regardless of session
// state — an already-authenticated visitor still sees the home, login, and
// registration views.
type PageHandler struct {
	render *Renderer

	// googleEnabled hides the "Sign in with Google" buttons when the
	// /auth/google routes are not mounted.
	googleEnabled bool
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(render *Renderer, googleEnabled bool) *PageHandler {
	return &PageHandler{render: render, googleEnabled: googleEnabled}
}

// HandleHome serves the landing page.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, "home", nil)
}

// HandleLoginForm serves the login form with empty fields and no error.
//
// HTTP: GET /login
func (h *PageHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, "login", loginFormData{GoogleEnabled: h.googleEnabled})
}

// HandleRegisterForm serves the registration form.
//
// HTTP: GET /register
func (h *PageHandler) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, "register", registerPageData{GoogleEnabled: h.googleEnabled})
}
