// Package dto defines the request and response bodies of the memory endpoints.
package dto

import (
	"vivimap/internal/feature/memories/domain/entity"
	"vivimap/internal/feature/memories/usecase"
)

type FileReq struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Key  string `json:"key"`
}

// CreateMemoryReq carries position as [latitude, longitude].
type CreateMemoryReq struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Position    []float64 `json:"position"`
	Files       []FileReq `json:"files"`
}

type PresignUploadReq struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

type MessageRes struct {
	Message string `json:"message"`
}

type MemoryRes struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Position    [2]float64    `json:"position"`
	Files       []entity.File `json:"files"`
	Author      string        `json:"author"`
}

// PlacementRes reports whether a pin may be dropped. NearestMeters is null
// when no memory exists yet.
type PlacementRes struct {
	Allowed       bool     `json:"allowed"`
	RadiusMeters  float64  `json:"radiusMeters"`
	NearestMeters *float64 `json:"nearestMeters"`
}

type UploadRes struct {
	Key  string          `json:"key"`
	URL  string          `json:"url"`
	Type entity.FileKind `json:"type"`
}

func NewMemoryRes(v usecase.MemoryView) MemoryRes {
	files := v.Files
	if files == nil {
		files = []entity.File{}
	}
	return MemoryRes{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Position:    [2]float64{v.Lat, v.Lng},
		Files:       files,
		Author:      v.Author,
	}
}
