package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kasirin/kasirin/app/models"
	"github.com/kasirin/kasirin/pkg/metrics"
)

// UserRepository reads and updates user profiles. Profile rows are created
// by the external identity service; this repository never inserts.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a repository on the given handle.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns all profiles sorted by full name.
func (r *UserRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var users []models.UserProfile
	if err := r.db.WithContext(ctx).Order("full_name asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return users, nil
}

// Find returns the profile with the given id, or (nil, nil) when absent.
// The API renders the absent case as a 200 with a null body.
func (r *UserRepository) Find(ctx context.Context, id string) (*models.UserProfile, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var user models.UserProfile
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("users: find %s: %w", id, err)
	}
	return &user, nil
}

// Update applies a partial update and returns the fresh row.
func (r *UserRepository) Update(ctx context.Context, id string, changes map[string]any) (*models.UserProfile, error) {
	defer metrics.ObserveDBQuery("update", time.Now())

	res := r.db.WithContext(ctx).Model(&models.UserProfile{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("users: update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("users: update %s: %w", id, gorm.ErrRecordNotFound)
	}

	var user models.UserProfile
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("users: reload %s: %w", id, err)
	}
	return &user, nil
}
