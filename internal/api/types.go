package api

import "geolink/internal/models"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AckResponse acknowledges a write.
type AckResponse struct {
	OK bool `json:"ok"`
}

// UploadResponse returns the minted, suffixed image id.
type UploadResponse struct {
	OK      bool   `json:"ok"`
	ImageID string `json:"image_id"`
}

// ReportRequest is the browser-side report payload. The server decodes it
// leniently, so this type is only used by clients.
type ReportRequest struct {
	Image    string   `json:"image"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
}

// LocationReport is a ledger row as returned by the query endpoints.
type LocationReport = models.LocationReport

// KeepAliveResponse is the /keep-alive payload.
type KeepAliveResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// InfoResponse summarizes the running service.
type InfoResponse struct {
	SchemaVersion int    `json:"schema_version"`
	TotalReports  int    `json:"total_reports"`
	TotalImages   int    `json:"total_images"`
	ImageDir      string `json:"image_dir,omitempty"`
}
