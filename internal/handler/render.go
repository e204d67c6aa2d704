// Package handler contains the HTTP request handlers: parse the form, call a
// service, pick a view or a redirect. No business rules live here.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
)

// pageNames lists every view under the template directory. Each page file
// defines a "content" block that base.html pulls in.
var pageNames = []string{"home", "login", "register", "secrets", "submit"}

// Renderer holds the parsed templates so they're compiled once at startup,
// not per request.
//
// Each page is parsed together with base.html into its own template set —
// they all define a "content" block, so they can't share one set.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses base.html plus every page template from templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	base := filepath.Join(templateDir, "base.html")

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFiles(base, filepath.Join(templateDir, name+".html"))
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes the named page template. Template failures after headers
// are partially written can't be unwound; we log and send what we can.
func (rd *Renderer) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := rd.pages[name]
	if !ok {
		rd.logger.Error("unknown template requested", slog.String("template", name))
		rd.RenderError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
	}
}

// RenderError sends the generic failure response. Internal details stay in
// the logs — the user sees nothing about what broke.
func (rd *Renderer) RenderError(w http.ResponseWriter) {
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}
