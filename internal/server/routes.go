package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /keep-alive", s.handleKeepAlive)
	mux.HandleFunc("GET /info", s.handleInfo)

	// Images.
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /static/images/{image_id}", s.handleStaticImage)

	// Pages.
	mux.HandleFunc("GET /i/{image_id}", s.handleView)
	mux.HandleFunc("GET /view/{image_id}", s.handleView)
	mux.HandleFunc("GET /map/{image_id}", s.handleMap)

	// Reports.
	mux.HandleFunc("POST /report", s.handleReport)
	mux.HandleFunc("GET /logs/last/{image_id}", s.handleLatest)
	mux.HandleFunc("GET /logs/{image_id}", s.handleHistory)

	return mux
}
