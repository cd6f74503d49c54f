package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"geolink/internal/api"
	"geolink/internal/imagestore"
	"geolink/internal/store"
)

type testEnv struct {
	srv     *Server
	handler http.Handler
	ledger  *store.Store
	images  *imagestore.LocalDir
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	ledger, err := store.Open(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	t.Cleanup(func() { ledger.Close() })

	images, err := imagestore.NewLocalDir(filepath.Join(dir, "images"))
	if err != nil {
		t.Fatalf("open image dir: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New("127.0.0.1:0", ledger, images, logger)
	srv.SetImageDir(images.Root())
	return &testEnv{srv: srv, handler: srv.Handler(), ledger: ledger, images: images}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) postReport(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:51234"
	return e.do(t, req)
}

func (e *testEnv) upload(t *testing.T, filename string, content []byte) string {
	t.Helper()
	req := newUploadRequest(t, "file", filename, content)
	w := e.do(t, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp api.UploadResponse
	decodeBody(t, w, &resp)
	if !resp.OK || resp.ImageID == "" {
		t.Fatalf("unexpected upload response: %#v", resp)
	}
	return resp.ImageID
}

func newUploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func requireErrorCode(t *testing.T, w *httptest.ResponseRecorder, status, code int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, w.Code, w.Body.String())
	}
	var errResp api.ErrorResponse
	decodeBody(t, w, &errResp)
	if errResp.ErrorCode != code {
		t.Fatalf("expected error_code %d, got %d (%q)", code, errResp.ErrorCode, errResp.Error)
	}
	if errResp.Error == "" {
		t.Fatal("expected human readable error message")
	}
}
