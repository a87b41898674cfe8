// Package handler provides the HTTP handlers of the memories feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vivimap/internal/feature/memories/domain/entity"
	"vivimap/internal/feature/memories/transport/http/dto"
	"vivimap/internal/feature/memories/usecase"
	jwtmw "vivimap/internal/platform/jwt"
	"vivimap/internal/shared/geo"
)

const msgTitlePositionRequired = "Title and position are required."

// MemoriesUsecase is the memory flow as seen by the transport layer.
type MemoriesUsecase interface {
	List(ctx context.Context) ([]usecase.MemoryView, error)
	Create(ctx context.Context, in usecase.CreateInput) (*usecase.MemoryView, error)
	CheckPlacement(ctx context.Context, p geo.Point) (geo.Placement, error)
	PresignUpload(ctx context.Context, name, contentType string) (*usecase.Upload, error)
	Radius() float64
}

// MemoriesHandler serves the /api/memories routes.
type MemoriesHandler struct {
	uc MemoriesUsecase
}

// NewMemoriesHandler returns a handler backed by uc.
func NewMemoriesHandler(uc MemoriesUsecase) *MemoriesHandler {
	return &MemoriesHandler{uc: uc}
}

// List returns every memory, oldest first.
//
// GET /api/memories
func (h *MemoriesHandler) List(c *gin.Context) {
	views, err := h.uc.List(c.Request.Context())
	if err != nil {
		slog.Error("list memories failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: "Internal server error while fetching memories."})
		return
	}

	out := make([]dto.MemoryRes, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewMemoryRes(v))
	}
	c.JSON(http.StatusOK, out)
}

// Create stores a memory for the signed-in user. Must run behind AuthRequired.
//
// POST /api/memories
func (h *MemoriesHandler) Create(c *gin.Context) {
	user, ok := jwtmw.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "Not authorized, no token provided"})
		return
	}

	var req dto.CreateMemoryReq
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Position) != 2 {
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: msgTitlePositionRequired})
		return
	}

	files := make([]entity.File, 0, len(req.Files))
	for _, f := range req.Files {
		kind, ok := entity.ParseFileKind(f.Type)
		if !ok {
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "File type must be image, video or audio."})
			return
		}
		files = append(files, entity.File{Name: f.Name, Type: kind, Key: f.Key})
	}

	view, err := h.uc.Create(c.Request.Context(), usecase.CreateInput{
		Position:    geo.Point{Lat: req.Position[0], Lng: req.Position[1]},
		Title:       req.Title,
		Description: req.Description,
		Files:       files,
		AuthorID:    user.ID,
	})
	if err != nil {
		var vErr *usecase.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: vErr.Message})
		case errors.Is(err, usecase.ErrTooClose):
			slog.Info("memory rejected by placement rule", "user_id", user.ID, "lat", req.Position[0], "lng", req.Position[1])
			c.JSON(http.StatusConflict, dto.MessageRes{Message: "This area is too close to an existing memory."})
		default:
			slog.Error("create memory failed", "error", err, "user_id", user.ID)
			c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: "Failed to create memory."})
		}
		return
	}

	slog.Info("memory created", "id", view.ID, "user_id", user.ID)
	c.JSON(http.StatusCreated, dto.NewMemoryRes(*view))
}

// Placement runs the exclusivity rule without creating anything.
//
// GET /api/memories/placement?lat=..&lng=..
func (h *MemoriesHandler) Placement(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Valid lat and lng query parameters are required."})
		return
	}

	p, err := h.uc.CheckPlacement(c.Request.Context(), geo.Point{Lat: lat, Lng: lng})
	if err != nil {
		var vErr *usecase.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: vErr.Message})
			return
		}
		slog.Error("placement check failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: "Internal server error."})
		return
	}

	res := dto.PlacementRes{Allowed: p.Allowed, RadiusMeters: h.uc.Radius()}
	if p.Nearest >= 0 {
		nearest := p.Nearest
		res.NearestMeters = &nearest
	}
	c.JSON(http.StatusOK, res)
}

// PresignUpload returns a presigned PUT URL for one attachment.
//
// POST /api/memories/uploads
func (h *MemoriesHandler) PresignUpload(c *gin.Context) {
	var req dto.PresignUploadReq
	_ = c.ShouldBindJSON(&req)

	up, err := h.uc.PresignUpload(c.Request.Context(), req.Name, req.ContentType)
	if err != nil {
		var vErr *usecase.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: vErr.Message})
		case errors.Is(err, usecase.ErrUploadsDisabled):
			c.JSON(http.StatusNotFound, dto.MessageRes{Message: "Uploads are not available."})
		default:
			slog.Error("presign upload failed", "error", err)
			c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: "Failed to prepare upload."})
		}
		return
	}
	c.JSON(http.StatusOK, dto.UploadRes{Key: up.Key, URL: up.URL, Type: up.Type})
}
