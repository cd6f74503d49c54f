package server

import (
	"net/http"
	"time"

	"geolink/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKeepAlive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, api.KeepAliveResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.ledger.StoreInfo(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.InfoResponse{
		SchemaVersion: info.SchemaVersion,
		TotalReports:  info.TotalReports,
		TotalImages:   info.TotalImages,
		ImageDir:      s.imageDir,
	})
}
