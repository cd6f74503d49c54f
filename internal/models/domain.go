package models

import (
	"strings"
	"time"
)

// ReceivedAtLayout is the wire and storage format of report timestamps.
const ReceivedAtLayout = "2006-01-02T15:04:05Z"

// UnknownRemoteAddr is recorded when the peer address is unavailable.
const UnknownRemoteAddr = "unknown"

// CanonicalImageID strips the extension suffix from an image id.
// Everything from the first '.' onward is dropped.
func CanonicalImageID(raw string) string {
	id := strings.TrimSpace(raw)
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// ReceivedAtNow returns the current UTC time at second precision.
func ReceivedAtNow() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
