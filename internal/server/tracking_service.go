package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"geolink/internal/imagestore"
	"geolink/internal/models"
	"geolink/internal/store"
)

// TrackingService holds the upload, view, report and query operations.
type TrackingService struct {
	ledger store.LedgerStore
	images imagestore.ImageStore
}

// NewTrackingService creates a tracking service.
func NewTrackingService(ledger store.LedgerStore, images imagestore.ImageStore) *TrackingService {
	return &TrackingService{ledger: ledger, images: images}
}

// ViewDescription is what the view page needs to render.
type ViewDescription struct {
	ImageID     string
	CanonicalID string
	ImageURL    string
	ReportURL   string
}

// Upload stores r under a freshly minted id derived from filename.
func (s *TrackingService) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	id, err := imagestore.MintID(filename)
	if err != nil {
		return "", internalError(fmt.Errorf("mint image id: %w", err))
	}
	if _, err := s.images.Write(ctx, id, r); err != nil {
		return "", storeFailure(fmt.Errorf("write image: %w", err))
	}
	return id, nil
}

// View resolves an image id into the page description.
func (s *TrackingService) View(ctx context.Context, imageID string) (ViewDescription, error) {
	imageID = strings.TrimSpace(imageID)
	if !imagestore.ValidID(imageID) {
		return ViewDescription{}, notFoundCode(imageNotFound(imageID), ErrCodeImageNotFound)
	}
	ok, err := s.images.Exists(ctx, imageID)
	if err != nil {
		return ViewDescription{}, storeFailure(err)
	}
	if !ok {
		return ViewDescription{}, notFoundCode(imageNotFound(imageID), ErrCodeImageNotFound)
	}
	return ViewDescription{
		ImageID:     imageID,
		CanonicalID: models.CanonicalImageID(imageID),
		ImageURL:    "/static/images/" + imageID,
		ReportURL:   "/report",
	}, nil
}

// OpenImage returns the stored bytes for imageID.
func (s *TrackingService) OpenImage(ctx context.Context, imageID string) (io.ReadCloser, error) {
	rc, err := s.images.Open(ctx, strings.TrimSpace(imageID))
	if err != nil {
		if errors.Is(err, imagestore.ErrNotFound) {
			return nil, notFoundCode(imageNotFound(imageID), ErrCodeImageNotFound)
		}
		return nil, storeFailure(err)
	}
	return rc, nil
}

// Ingest validates a leniently decoded report payload and appends it.
func (s *TrackingService) Ingest(ctx context.Context, payload map[string]any, remoteAddr string) (*models.LocationReport, error) {
	raw, _ := payload["image"].(string)
	imageID := models.CanonicalImageID(raw)
	if imageID == "" {
		return nil, missingIdentifier()
	}

	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		remoteAddr = models.UnknownRemoteAddr
	}

	report := &models.LocationReport{
		ImageID:    imageID,
		Lat:        numericField(payload["lat"]),
		Lon:        numericField(payload["lon"]),
		Accuracy:   numericField(payload["accuracy"]),
		ReceivedAt: models.ReceivedAtNow(),
		RemoteAddr: remoteAddr,
	}
	if err := s.ledger.AppendReport(ctx, report); err != nil {
		if errors.Is(err, store.ErrMissingImageID) {
			return nil, missingIdentifier()
		}
		return nil, storeFailure(err)
	}
	return report, nil
}

// Latest returns the newest report for an image id.
func (s *TrackingService) Latest(ctx context.Context, imageID string) (*models.LocationReport, error) {
	canonical := models.CanonicalImageID(imageID)
	if canonical == "" {
		return nil, missingIdentifier()
	}
	report, err := s.ledger.LatestReport(ctx, canonical)
	if err != nil {
		return nil, storeFailure(err)
	}
	if report == nil {
		return nil, notFoundCode(fmt.Errorf("no location reports for image %s", canonical), ErrCodeReportNotFound)
	}
	return report, nil
}

// History returns all reports for an image id, oldest first.
func (s *TrackingService) History(ctx context.Context, imageID string) ([]models.LocationReport, error) {
	canonical := models.CanonicalImageID(imageID)
	if canonical == "" {
		return nil, missingIdentifier()
	}
	reports, err := s.ledger.ListReports(ctx, canonical)
	if err != nil {
		return nil, storeFailure(err)
	}
	if reports == nil {
		reports = []models.LocationReport{}
	}
	return reports, nil
}

func imageNotFound(imageID string) error {
	return fmt.Errorf("image %s not found", strings.TrimSpace(imageID))
}

// numericField accepts JSON numbers and numeric strings.
// Anything else, including NaN and infinities, is absent.
func numericField(v any) *float64 {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
