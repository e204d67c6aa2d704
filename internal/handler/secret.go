package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/whisperwall/internal/auth"
	"github.com/sakif/whisperwall/internal/service"
)

// secretsPageData feeds the secrets listing template. Only the secret
// strings cross into the view — never which account owns which.
type secretsPageData struct {
	Secrets []string
}

// SecretHandler serves the authenticated-only pages: the wall of secrets and
// the submission form. The routes are mounted behind RequireAuth, so every
// request here carries an account ID in its context.
type SecretHandler struct {
	secrets *service.SecretService
	render  *Renderer
	logger  *slog.Logger
}

// NewSecretHandler creates a SecretHandler.
func NewSecretHandler(secrets *service.SecretService, render *Renderer, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secrets: secrets,
		render:  render,
		logger:  logger,
	}
}

// HandleSecrets renders the unattributed list of everyone's secrets.
//
// HTTP: GET /secrets (authenticated)
func (h *SecretHandler) HandleSecrets(w http.ResponseWriter, r *http.Request) {
	secrets, err := h.secrets.List(r.Context())
	if err != nil {
		h.logger.Error("secrets: listing", slog.String("error", err.Error()))
		h.render.RenderError(w)
		return
	}

	h.render.Render(w, "secrets", secretsPageData{Secrets: secrets})
}

// HandleSubmitForm renders the secret-submission form.
//
// HTTP: GET /submit (authenticated)
func (h *SecretHandler) HandleSubmitForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, "submit", nil)
}

// HandleSubmit overwrites the current account's secret.
//
// HTTP: POST /submit (form field: secret, authenticated)
//
// A storage failure surfaces as an error page — the redirect to /secrets
// only happens after the write actually succeeded.
func (h *SecretHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	accountID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		// RequireAuth puts the ID there; missing means a wiring bug, not an
		// anonymous user.
		h.logger.Error("submit: no account ID in context")
		h.render.RenderError(w)
		return
	}

	if err := h.secrets.Submit(r.Context(), accountID, r.PostFormValue("secret")); err != nil {
		h.logger.Error("submit: saving secret",
			slog.String("accountID", accountID),
			slog.String("error", err.Error()),
		)
		h.render.RenderError(w)
		return
	}

	http.Redirect(w, r, "/secrets", http.StatusSeeOther)
}
