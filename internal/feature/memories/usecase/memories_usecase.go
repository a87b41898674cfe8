// Package usecase implements the memory flow: listing, placing and uploading.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"vivimap/internal/feature/memories/domain/entity"
	"vivimap/internal/shared/geo"
)

const (
	// UnknownAuthor is shown when the author of a memory cannot be resolved.
	UnknownAuthor = "Unknown"

	maxTitleLength       = 200
	maxDescriptionLength = 5000
	maxFiles             = 20
	uploadKeyPrefix      = "memories/"
)

// MemoryRepository abstracts memory persistence.
// Interfaces are defined on the consumer side.
type MemoryRepository interface {
	// List returns every memory ordered by creation time, oldest first.
	List(ctx context.Context) ([]entity.Memory, error)
	// Positions returns the position of every stored memory.
	Positions(ctx context.Context) ([]geo.Point, error)
	Create(ctx context.Context, m *entity.Memory) error
}

// AuthorDirectory resolves user ids to usernames. Unknown ids are omitted.
type AuthorDirectory interface {
	FindUsernames(ctx context.Context, ids []string) (map[string]string, error)
}

// UploadPresigner issues time-limited upload URLs for object keys.
type UploadPresigner interface {
	PresignPut(ctx context.Context, key, contentType string) (string, error)
}

// MemoryView is a memory with its author resolved for display.
type MemoryView struct {
	entity.Memory
	Author string
}

type CreateInput struct {
	Position    geo.Point
	Title       string
	Description string
	Files       []entity.File
	AuthorID    string
}

// Upload is a presigned upload target.
type Upload struct {
	Key  string
	URL  string
	Type entity.FileKind
}

type memoriesUsecase struct {
	repo    MemoryRepository
	authors AuthorDirectory
	uploads UploadPresigner
	radius  float64
	now     func() time.Time

	// mu serializes the exclusivity check with the insert that follows it.
	mu sync.Mutex
}

// NewMemoriesUsecase creates the memory flow controller. uploads may be nil
// when object storage is not configured.
func NewMemoriesUsecase(repo MemoryRepository, authors AuthorDirectory, uploads UploadPresigner) *memoriesUsecase {
	return &memoriesUsecase{
		repo:    repo,
		authors: authors,
		uploads: uploads,
		radius:  geo.ExclusivityRadiusMeters,
		now:     time.Now,
	}
}

// Radius returns the exclusivity radius in meters.
func (u *memoriesUsecase) Radius() float64 { return u.radius }

// UploadsEnabled reports whether PresignUpload can succeed.
func (u *memoriesUsecase) UploadsEnabled() bool { return u.uploads != nil }

func (u *memoriesUsecase) List(ctx context.Context) ([]MemoryView, error) {
	ms, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(ms))
	seen := make(map[string]struct{}, len(ms))
	for _, m := range ms {
		if _, ok := seen[m.AuthorID]; ok {
			continue
		}
		seen[m.AuthorID] = struct{}{}
		ids = append(ids, m.AuthorID)
	}
	names := u.resolveAuthors(ctx, ids)

	out := make([]MemoryView, 0, len(ms))
	for _, m := range ms {
		out = append(out, MemoryView{Memory: m, Author: authorName(names, m.AuthorID)})
	}
	return out, nil
}

// Create validates and stores a memory. The placement rule is enforced here
// regardless of any client-side check.
func (u *memoriesUsecase) Create(ctx context.Context, in CreateInput) (*MemoryView, error) {
	m, err := u.buildMemory(in)
	if err != nil {
		return nil, err
	}

	if err := u.insertExclusive(ctx, m); err != nil {
		return nil, err
	}

	names := u.resolveAuthors(ctx, []string{m.AuthorID})
	return &MemoryView{Memory: *m, Author: authorName(names, m.AuthorID)}, nil
}

func (u *memoriesUsecase) insertExclusive(ctx context.Context, m *entity.Memory) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	existing, err := u.repo.Positions(ctx)
	if err != nil {
		return err
	}
	if p := geo.CheckExclusivity(m.Position(), existing, u.radius); !p.Allowed {
		return ErrTooClose
	}
	return u.repo.Create(ctx, m)
}

func (u *memoriesUsecase) buildMemory(in CreateInput) (*entity.Memory, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("Title and position are required.")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, invalid(fmt.Sprintf("Title must be at most %d characters.", maxTitleLength))
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return nil, invalid(fmt.Sprintf("Description must be at most %d characters.", maxDescriptionLength))
	}
	if !in.Position.Valid() {
		return nil, invalid("Position must be a valid [latitude, longitude] pair.")
	}
	if in.AuthorID == "" {
		return nil, invalid("Author is required.")
	}
	if len(in.Files) > maxFiles {
		return nil, invalid(fmt.Sprintf("At most %d files can be attached.", maxFiles))
	}

	files := make([]entity.File, 0, len(in.Files))
	for _, f := range in.Files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, invalid("Every file needs a name.")
		}
		if _, ok := entity.ParseFileKind(string(f.Type)); !ok {
			return nil, invalid("File type must be image, video or audio.")
		}
		files = append(files, entity.File{Name: name, Type: f.Type, Key: f.Key})
	}

	now := u.now().UTC()
	return &entity.Memory{
		ID:          uuid.NewString(),
		Lat:         in.Position.Lat,
		Lng:         in.Position.Lng,
		Title:       title,
		Description: description,
		Files:       files,
		AuthorID:    in.AuthorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CheckPlacement runs the exclusivity rule against the stored memories.
func (u *memoriesUsecase) CheckPlacement(ctx context.Context, p geo.Point) (geo.Placement, error) {
	if !p.Valid() {
		return geo.Placement{}, invalid("Valid lat and lng query parameters are required.")
	}
	existing, err := u.repo.Positions(ctx)
	if err != nil {
		return geo.Placement{}, err
	}
	return geo.CheckExclusivity(p, existing, u.radius), nil
}

// PresignUpload reserves a random storage key for a file and returns a
// presigned PUT URL for it.
func (u *memoriesUsecase) PresignUpload(ctx context.Context, name, contentType string) (*Upload, error) {
	if u.uploads == nil {
		return nil, ErrUploadsDisabled
	}
	name = strings.TrimSpace(name)
	contentType = strings.TrimSpace(contentType)
	if name == "" || contentType == "" {
		return nil, invalid("File name and content type are required.")
	}

	key := uploadKeyPrefix + uuid.NewString() + strings.ToLower(path.Ext(name))
	url, err := u.uploads.PresignPut(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	return &Upload{Key: key, URL: url, Type: entity.KindFromMIME(contentType)}, nil
}

// resolveAuthors never fails; lookup errors degrade to UnknownAuthor.
func (u *memoriesUsecase) resolveAuthors(ctx context.Context, ids []string) map[string]string {
	if len(ids) == 0 {
		return nil
	}
	names, err := u.authors.FindUsernames(ctx, ids)
	if err != nil {
		slog.Warn("author lookup failed", "error", err, "count", len(ids))
		return nil
	}
	return names
}

func authorName(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return UnknownAuthor
}
