package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"vivimap/internal/feature/auth/domain/entity"
	"vivimap/internal/feature/auth/usecase"
)

// userGorm is the gorm implementation of usecase.UserRepository.
type userGorm struct {
	db *gorm.DB
}

var _ usecase.UserRepository = (*userGorm)(nil)

func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts u. A unique constraint violation on email or username maps
// to usecase.ErrEmailOrUsernameTaken.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailOrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findBy(ctx, "email = ?", email)
}

func (r *userGorm) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.findBy(ctx, "username = ?", username)
}

func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findBy(ctx, "id = ?", id)
}

func (r *userGorm) findBy(ctx context.Context, query string, arg any) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindUsernames resolves many user ids at once. Unknown ids are absent from
// the result.
func (r *userGorm) FindUsernames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID       string
		Username string
	}
	if err := r.db.WithContext(ctx).Model(&entity.User{}).
		Select("id", "username").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Username
	}
	return out, nil
}

func (r *userGorm) MarkEmailVerified(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		Update("email_verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
