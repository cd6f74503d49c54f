package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"strings"

	"geolink/internal/api"
	"geolink/internal/models"
)

const (
	defaultUploadMaxBody   = 20 << 20 // 20 MiB
	defaultMultipartMemory = 8 << 20  // 8 MiB
)

// UploadOptions bounds multipart uploads.
type UploadOptions struct {
	MaxBody         int64
	MultipartMemory int64
}

func defaultUploadOptions() UploadOptions {
	return UploadOptions{MaxBody: defaultUploadMaxBody, MultipartMemory: defaultMultipartMemory}
}

// ConfigureUploadOptions overrides upload limits. Non-positive values keep defaults.
func (s *Server) ConfigureUploadOptions(opts UploadOptions) {
	defaults := defaultUploadOptions()
	if opts.MaxBody <= 0 {
		opts.MaxBody = defaults.MaxBody
	}
	if opts.MultipartMemory <= 0 {
		opts.MultipartMemory = defaults.MultipartMemory
	}
	s.uploads = opts
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.acquireLimiter(s.uploadLimiter, w, r, "upload") {
		return
	}
	defer s.releaseLimiter(s.uploadLimiter)

	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxBody)
	if err := r.ParseMultipartForm(s.uploads.MultipartMemory); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, classifyMultipartError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("file is required"), ErrCodeMissingFile))
		return
	}
	defer file.Close()

	imageID, err := s.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.log().Info("image uploaded", "image_id", imageID, "size", header.Size)
	s.writeJSON(w, http.StatusCreated, api.UploadResponse{OK: true, ImageID: imageID})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.View(r.Context(), pathImageID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.renderPage(w, r, viewTemplate, view)
}

func (s *Server) handleStaticImage(w http.ResponseWriter, r *http.Request) {
	imageID := pathImageID(r)
	rc, err := s.service.OpenImage(r.Context(), imageID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer rc.Close()

	buffered := bufio.NewReader(rc)
	contentType := mime.TypeByExtension(filepath.Ext(imageID))
	if contentType == "" {
		peek, _ := buffered.Peek(512)
		contentType = http.DetectContentType(peek)
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, buffered); err != nil {
		s.log().Warn("stream image", "image_id", imageID, "error", err)
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	imageID := pathImageID(r)
	s.renderPage(w, r, mapTemplate, mapPage{
		ImageID:     imageID,
		CanonicalID: models.CanonicalImageID(imageID),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	payload := decodeReportPayload(w, r)

	report, err := s.service.Ingest(r.Context(), payload, peerAddr(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.log().Info("location report recorded",
		"id", report.ID,
		"image_id", report.ImageID,
		"has_fix", report.HasFix(),
		"remote_addr", report.RemoteAddr,
	)
	s.writeJSON(w, http.StatusOK, api.AckResponse{OK: true})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Latest(r.Context(), pathImageID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	reports, err := s.service.History(r.Context(), pathImageID(r))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("format")), "ndjson") {
		s.writeNDJSON(w, reports)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

func (s *Server) writeNDJSON(w http.ResponseWriter, reports []models.LocationReport) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	for i := range reports {
		if err := enc.Encode(reports[i]); err != nil {
			s.log().Error("write ndjson response", "error", err)
			return
		}
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// decodeReportPayload never fails: unreadable or non-object bodies
// decode to an empty payload and are rejected later for the missing image.
func decodeReportPayload(w http.ResponseWriter, r *http.Request) map[string]any {
	r.Body = http.MaxBytesReader(w, r.Body, reportJSONMaxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil && !errors.Is(err, io.EOF) {
		return map[string]any{}
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return map[string]any{}
	}
	payload, ok := decoded.(map[string]any)
	if !ok || payload == nil {
		return map[string]any{}
	}
	return payload
}

func peerAddr(r *http.Request) string {
	raw := strings.TrimSpace(r.RemoteAddr)
	if raw == "" {
		return models.UnknownRemoteAddr
	}
	host, _, err := net.SplitHostPort(raw)
	if err != nil || host == "" {
		return raw
	}
	return host
}
