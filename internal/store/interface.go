package store

import (
	"context"
	"errors"

	"geolink/internal/models"
)

// ErrMissingImageID is returned when a report has no canonical image id.
var ErrMissingImageID = errors.New("image id is required")

// LedgerStore abstracts the append-only location ledger.
type LedgerStore interface {
	AppendReport(ctx context.Context, report *models.LocationReport) error
	LatestReport(ctx context.Context, imageID string) (*models.LocationReport, error)
	ListReports(ctx context.Context, imageID string) ([]models.LocationReport, error)
	CountReports(ctx context.Context, imageID string) (int, error)
	StoreInfo(ctx context.Context) (*StoreInfo, error)
}

// StoreInfo summarizes the ledger.
type StoreInfo struct {
	SchemaVersion int `json:"schema_version"`
	TotalReports  int `json:"total_reports"`
	TotalImages   int `json:"total_images"`
}

var _ LedgerStore = (*Store)(nil)
