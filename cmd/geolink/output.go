package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"geolink/internal/api"
	"geolink/internal/format"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeReportList(reports []api.LocationReport) error {
	for _, report := range reports {
		if err := writePlain("%s\n", formatReportLine(report)); err != nil {
			return err
		}
	}
	return nil
}

func writeReportDetail(report api.LocationReport) error {
	lines := []string{
		fmt.Sprintf("id: %d", report.ID),
		fmt.Sprintf("image_id: %s", report.ImageID),
		fmt.Sprintf("received_at: %s", formatTime(report.ReceivedAt)),
		fmt.Sprintf("remote_addr: %s", report.RemoteAddr),
		fmt.Sprintf("lat: %s", formatCoord(report.Lat)),
		fmt.Sprintf("lon: %s", formatCoord(report.Lon)),
		fmt.Sprintf("accuracy: %s", formatCoord(report.Accuracy)),
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatReportLine(report api.LocationReport) string {
	position := "no fix"
	if report.HasFix() {
		position = formatCoord(report.Lat) + "," + formatCoord(report.Lon)
		if report.Accuracy != nil {
			position += " ±" + formatCoord(report.Accuracy) + "m"
		}
	}
	return fmt.Sprintf("#%d %s %s [%s]", report.ID, formatTime(report.ReceivedAt), position, report.RemoteAddr)
}

func formatCoord(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
