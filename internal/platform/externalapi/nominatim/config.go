// Package nominatim provides a client for the OpenStreetMap Nominatim search API.
package nominatim

import "time"

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Config holds configuration for the Nominatim client.
type Config struct {
	BaseURL   string        // e.g. "https://nominatim.openstreetmap.org"
	UserAgent string        // required by the Nominatim usage policy
	Timeout   time.Duration // HTTP request timeout
	Limit     int           // maximum results per query
}
