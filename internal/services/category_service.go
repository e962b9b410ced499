package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"saldo/internal/config"
	apperrors "saldo/internal/errors"
	"saldo/internal/logger"
	"saldo/internal/models"
)

// Defaults applied to categories created without a color or icon.
const (
	DefaultCategoryColor = "#4CAF50"
	DefaultCategoryIcon  = "tag"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db    *gorm.DB
	seeds []config.CategorySeed
}

// NewCategoryService creates a new CategoryServicer. seeds are the default
// categories given to a user on first access; nil uses the builtin set.
func NewCategoryService(db *gorm.DB, seeds []config.CategorySeed) CategoryServicer {
	if seeds == nil {
		seeds = config.BuiltinCategories
	}
	return &categoryService{db: db, seeds: seeds}
}

// CreateCategory creates a new category
func (s *categoryService) CreateCategory(ctx context.Context, userID string, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	db := s.db.WithContext(ctx)
	if err := s.ensureUniqueName(db, userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Color:  orDefault(in.Color, DefaultCategoryColor),
		Icon:   orDefault(in.Icon, DefaultCategoryIcon),
	}
	if err := db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories returns the user's categories ordered by name, seeding
// the defaults when the user has none yet.
func (s *categoryService) GetUserCategories(ctx context.Context, userID string) ([]models.Category, error) {
	return s.EnsureDefaultCategories(ctx, userID)
}

// EnsureDefaultCategories creates the default categories for a user that
// has no categories and returns the user's full list.
func (s *categoryService) EnsureDefaultCategories(ctx context.Context, userID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 && len(s.seeds) > 0 {
			defaults := make([]models.Category, len(s.seeds))
			for i, seed := range s.seeds {
				defaults[i] = models.Category{
					UserID:    userID,
					Name:      seed.Name,
					Color:     orDefault(seed.Color, DefaultCategoryColor),
					Icon:      orDefault(seed.Icon, DefaultCategoryIcon),
					IsDefault: true,
				}
			}
			if err := tx.Create(&defaults).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			logger.Get().Infow("seeded default categories", "user_id", userID, "count", len(defaults))
		}
		if err := tx.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(ctx context.Context, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category. Transactions keep the label
// they were recorded with.
func (s *categoryService) UpdateCategory(ctx context.Context, userID, categoryID string, fields CategoryUpdateFields) (*models.Category, error) {
	category, err := s.GetCategoryByID(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if name != category.Name {
			if err := s.ensureUniqueName(db, userID, name, category.ID); err != nil {
				return nil, err
			}
		}
		updates["name"] = name
	}
	if fields.Color != nil && *fields.Color != "" {
		updates["color"] = *fields.Color
	}
	if fields.Icon != nil && *fields.Icon != "" {
		updates["icon"] = *fields.Icon
	}

	if len(updates) > 0 {
		if err := db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := db.Where("id = ?", category.ID).First(category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory deletes a user-created category. Default categories are
// protected.
func (s *categoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	category, err := s.GetCategoryByID(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return apperrors.ErrCategoryIsDefault
	}
	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *categoryService) ensureUniqueName(db *gorm.DB, userID, name, excludeID string) error {
	q := db.Model(&models.Category{}).Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
