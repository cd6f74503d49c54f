package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"geolink/internal/models"
)

const reportColumns = "id, image_id, lat, lon, accuracy, received_at, remote_addr"

// AppendReport inserts one ledger row and sets report.ID to its sequence number.
func (s *Store) AppendReport(ctx context.Context, report *models.LocationReport) error {
	if report == nil {
		return fmt.Errorf("report is required")
	}
	imageID := strings.TrimSpace(report.ImageID)
	if imageID == "" {
		return ErrMissingImageID
	}
	remoteAddr := report.RemoteAddr
	if remoteAddr == "" {
		remoteAddr = models.UnknownRemoteAddr
	}
	receivedAt := report.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = models.ReceivedAtNow()
	}
	receivedAt = receivedAt.UTC().Truncate(time.Second)

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO location_reports (image_id, lat, lon, accuracy, received_at, remote_addr) VALUES (?, ?, ?, ?, ?, ?)",
		imageID,
		nullFloat(report.Lat),
		nullFloat(report.Lon),
		nullFloat(report.Accuracy),
		receivedAt.Format(models.ReceivedAtLayout),
		remoteAddr,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("report sequence id: %w", err)
	}

	report.ID = id
	report.ImageID = imageID
	report.ReceivedAt = receivedAt
	report.RemoteAddr = remoteAddr
	return nil
}

// LatestReport returns the newest report for imageID, or nil when there is none.
func (s *Store) LatestReport(ctx context.Context, imageID string) (*models.LocationReport, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM location_reports WHERE image_id = ? ORDER BY id DESC LIMIT 1",
		imageID,
	)
	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest report: %w", err)
	}
	return report, nil
}

// ListReports returns every report for imageID, oldest first.
func (s *Store) ListReports(ctx context.Context, imageID string) ([]models.LocationReport, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM location_reports WHERE image_id = ? ORDER BY id ASC",
		imageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := []models.LocationReport{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// CountReports returns the number of reports stored for imageID.
func (s *Store) CountReports(ctx context.Context, imageID string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM location_reports WHERE image_id = ?", imageID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}

// StoreInfo returns schema and row statistics.
func (s *Store) StoreInfo(ctx context.Context) (*StoreInfo, error) {
	info := &StoreInfo{}
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&info.SchemaVersion); err != nil {
		return nil, fmt.Errorf("schema version: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT image_id) FROM location_reports",
	).Scan(&info.TotalReports, &info.TotalImages); err != nil {
		return nil, fmt.Errorf("report totals: %w", err)
	}
	return info, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.LocationReport, error) {
	var (
		report     models.LocationReport
		lat        sql.NullFloat64
		lon        sql.NullFloat64
		accuracy   sql.NullFloat64
		receivedAt string
	)
	if err := row.Scan(&report.ID, &report.ImageID, &lat, &lon, &accuracy, &receivedAt, &report.RemoteAddr); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(models.ReceivedAtLayout, receivedAt)
	if err != nil {
		return nil, fmt.Errorf("parse received_at %q: %w", receivedAt, err)
	}
	report.ReceivedAt = parsed
	report.Lat = floatPtr(lat)
	report.Lon = floatPtr(lon)
	report.Accuracy = floatPtr(accuracy)
	return &report, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}
