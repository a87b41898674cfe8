// Package adapters persists memories with gorm.
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vivimap/internal/feature/memories/domain/entity"
	"vivimap/internal/feature/memories/usecase"
	"vivimap/internal/shared/geo"
)

type memoryGorm struct {
	db *gorm.DB
}

var _ usecase.MemoryRepository = (*memoryGorm)(nil)

func NewMemoryGorm(db *gorm.DB) *memoryGorm {
	return &memoryGorm{db: db}
}

// MemoryModel stores the attached files as a JSON column.
type MemoryModel struct {
	ID          string        `gorm:"primaryKey;size:36"`
	Latitude    float64       `gorm:"not null"`
	Longitude   float64       `gorm:"not null"`
	Title       string        `gorm:"size:200;not null"`
	Description string        `gorm:"type:text"`
	Files       []entity.File `gorm:"serializer:json;type:text"`
	AuthorID    string        `gorm:"size:36;not null;index"`
	CreatedAt   time.Time     `gorm:"not null;index"`
	UpdatedAt   time.Time
}

func (MemoryModel) TableName() string {
	return "memories"
}

func toModel(m *entity.Memory) MemoryModel {
	return MemoryModel{
		ID:          m.ID,
		Latitude:    m.Lat,
		Longitude:   m.Lng,
		Title:       m.Title,
		Description: m.Description,
		Files:       m.Files,
		AuthorID:    m.AuthorID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (m MemoryModel) toEntity() entity.Memory {
	files := m.Files
	if files == nil {
		files = []entity.File{}
	}
	return entity.Memory{
		ID:          m.ID,
		Lat:         m.Latitude,
		Lng:         m.Longitude,
		Title:       m.Title,
		Description: m.Description,
		Files:       files,
		AuthorID:    m.AuthorID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *memoryGorm) Create(ctx context.Context, m *entity.Memory) error {
	row := toModel(m)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	m.CreatedAt = row.CreatedAt
	m.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *memoryGorm) List(ctx context.Context) ([]entity.Memory, error) {
	var rows []MemoryModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Memory, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toEntity())
	}
	return out, nil
}

func (r *memoryGorm) Positions(ctx context.Context) ([]geo.Point, error) {
	var rows []struct {
		Latitude  float64
		Longitude float64
	}
	if err := r.db.WithContext(ctx).
		Model(&MemoryModel{}).
		Select("latitude", "longitude").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]geo.Point, 0, len(rows))
	for _, p := range rows {
		out = append(out, geo.Point{Lat: p.Latitude, Lng: p.Longitude})
	}
	return out, nil
}
