package models

import "time"

// LocationReport is one append-only ledger row.
// Lat, Lon and Accuracy are nil when the client sent no usable value.
type LocationReport struct {
	ID         int64     `json:"id"`
	ImageID    string    `json:"image_id"`
	Lat        *float64  `json:"lat"`
	Lon        *float64  `json:"lon"`
	Accuracy   *float64  `json:"accuracy"`
	ReceivedAt time.Time `json:"received_at"`
	RemoteAddr string    `json:"remote_addr"`
}

// HasFix reports whether both coordinates are present.
func (r LocationReport) HasFix() bool {
	return r.Lat != nil && r.Lon != nil
}
