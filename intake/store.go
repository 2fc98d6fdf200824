package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/rwa-intake/models"
	"gorm.io/gorm"
)

// Store persists submissions. Create must enforce email uniqueness and report
// a violation as ErrAlreadyRegistered.
type Store interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, s *models.Submission) error
}

type GormStore struct {
	db *gorm.DB
}

// NewGormStore expects db to be opened with TranslateError enabled.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("email = ?", email).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("lookup submission by email: %w", err)
	}
	return n > 0, nil
}

func (g *GormStore) Create(ctx context.Context, s *models.Submission) error {
	if err := g.db.WithContext(ctx).Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}
