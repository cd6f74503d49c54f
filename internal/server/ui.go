package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	viewTemplate = template.Must(template.ParseFS(templateFS, "templates/view.html"))
	mapTemplate  = template.Must(template.ParseFS(templateFS, "templates/map.html"))
)

type mapPage struct {
	ImageID     string
	CanonicalID string
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.writeServiceError(w, r, internalError(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
