package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/kdimtricp/videocatalog/internal/models"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *DB
}

func NewVideoRepository(db *DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts video and fills in the store-generated ID.
func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	result := r.db.GORM().WithContext(ctx).Create(video)
	if result.Error != nil {
		return fmt.Errorf("failed to insert video: %w", result.Error)
	}
	return nil
}

// FindAvailableByID returns models.ErrVideoNotFound for absent and soft-deleted videos alike.
func (r *VideoRepository) FindAvailableByID(ctx context.Context, id int64) (*models.Video, error) {
	var video models.Video
	result := r.db.GORM().WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		Take(&video)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, models.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", result.Error)
	}
	return &video, nil
}

// Save overwrites every column of an existing row.
func (r *VideoRepository) Save(ctx context.Context, video *models.Video) error {
	result := r.db.GORM().WithContext(ctx).Save(video)
	if result.Error != nil {
		return fmt.Errorf("failed to save video: %w", result.Error)
	}
	return nil
}

// MarkDeleted flips deleted from false to true. It reports false when no live row matched.
func (r *VideoRepository) MarkDeleted(ctx context.Context, id int64) (bool, error) {
	result := r.db.GORM().WithContext(ctx).
		Model(&models.Video{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete video: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *VideoRepository) ListAvailable(ctx context.Context) ([]models.Video, error) {
	videos := []models.Video{}
	result := r.db.GORM().WithContext(ctx).
		Where("deleted = ?", false).
		Order("id").
		Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list videos: %w", result.Error)
	}
	return videos, nil
}

// Search narrows the live videos by every non-nil criterion. Director and genre match exactly,
// title by case-sensitive substring.
func (r *VideoRepository) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Video, error) {
	db := r.db.GORM().WithContext(ctx).Where("deleted = ?", false)

	if criteria.Director != nil {
		db = db.Where("director = ?", *criteria.Director)
	}
	if criteria.Genre != nil {
		db = db.Where("genre = ?", *criteria.Genre)
	}
	if criteria.Title != nil {
		if r.db.dbType == TypePostgres {
			db = db.Where("strpos(title, ?) > 0", *criteria.Title)
		} else {
			db = db.Where("instr(title, ?) > 0", *criteria.Title)
		}
	}

	videos := []models.Video{}
	result := db.Order("id").Find(&videos)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to search videos: %w", result.Error)
	}

	return videos, nil
}
