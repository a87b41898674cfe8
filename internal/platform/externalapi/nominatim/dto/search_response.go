// Package dto mirrors the Nominatim JSON search response.
package dto

// SearchResult is one element of the format=json response. Coordinates and
// the bounding box arrive as strings.
type SearchResult struct {
	DisplayName string   `json:"display_name"`
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	Class       string   `json:"class"`
	Type        string   `json:"type"`
	AddressType string   `json:"addresstype"`
	BoundingBox []string `json:"boundingbox"` // south, north, west, east
}
