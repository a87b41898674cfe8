// Package entity defines the memory domain model.
package entity

import (
	"strings"
	"time"

	"vivimap/internal/shared/geo"
)

// FileKind is the media category of an attached file.
type FileKind string

const (
	FileImage FileKind = "image"
	FileVideo FileKind = "video"
	FileAudio FileKind = "audio"
)

// ParseFileKind accepts exactly the three known kinds.
func ParseFileKind(s string) (FileKind, bool) {
	switch k := FileKind(s); k {
	case FileImage, FileVideo, FileAudio:
		return k, true
	}
	return "", false
}

// KindFromMIME maps a MIME type to a kind; anything not video or audio is an image.
func KindFromMIME(mime string) FileKind {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(mime, "video/"):
		return FileVideo
	case strings.HasPrefix(mime, "audio/"):
		return FileAudio
	default:
		return FileImage
	}
}

// File is an attachment reference. Key is the object storage key when the
// file was uploaded through a presigned URL.
type File struct {
	Name string   `json:"name"`
	Type FileKind `json:"type"`
	Key  string   `json:"key,omitempty"`
}

// Memory is a titled pin on the map. Memories are append-only.
type Memory struct {
	ID          string    `json:"id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Files       []File    `json:"files"`
	AuthorID    string    `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (m Memory) Position() geo.Point {
	return geo.Point{Lat: m.Lat, Lng: m.Lng}
}
