package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jobselect/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return user, nil
}

// Create inserts a user; a concurrent insert of the same email surfaces as
// a Conflict so the caller can re-read.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewError(domain.KindConflict, "user email already registered", err)
		}
		return domain.Internal("create user", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, photo string) error {
	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "photo": photo}).Error
}

// notFound maps gorm's missing-row error onto the domain taxonomy.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(what + " not found")
	}
	return domain.Internal("load "+what, err)
}
