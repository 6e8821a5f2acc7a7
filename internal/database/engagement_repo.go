package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kdimtricp/videocatalog/internal/models"
)

type EngagementRepository struct {
	db *DB
}

func NewEngagementRepository(db *DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// FindByVideoID returns the counter row for videoID. found is false when none has been saved yet.
// Should duplicates ever exist, the oldest row wins.
func (r *EngagementRepository) FindByVideoID(ctx context.Context, videoID int64) (*models.VideoEngagement, bool, error) {
	query := `
		SELECT id, video_id, views, impressions
		FROM video_engagements
		WHERE video_id = ?
		ORDER BY id
		LIMIT 1`
	if r.db.dbType == TypePostgres {
		query = `
		SELECT id, video_id, views, impressions
		FROM video_engagements
		WHERE video_id = $1
		ORDER BY id
		LIMIT 1`
	}

	var engagement models.VideoEngagement
	err := r.db.conn.QueryRowContext(ctx, query, videoID).Scan(
		&engagement.ID,
		&engagement.VideoID,
		&engagement.Views,
		&engagement.Impressions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get engagement: %w", err)
	}

	return &engagement, true, nil
}

// Save inserts an unsaved engagement, assigning its ID, or overwrites the counters of a saved one.
func (r *EngagementRepository) Save(ctx context.Context, engagement *models.VideoEngagement) error {
	if engagement.IsPersisted() {
		return r.update(ctx, engagement)
	}
	return r.insert(ctx, engagement)
}

func (r *EngagementRepository) insert(ctx context.Context, engagement *models.VideoEngagement) error {
	if r.db.dbType == TypePostgres {
		query := `
			INSERT INTO video_engagements (video_id, views, impressions)
			VALUES ($1, $2, $3)
			RETURNING id`

		err := r.db.conn.QueryRowContext(ctx, query,
			engagement.VideoID,
			engagement.Views,
			engagement.Impressions,
		).Scan(&engagement.ID)
		if err != nil {
			return fmt.Errorf("failed to insert engagement: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO video_engagements (video_id, views, impressions)
		VALUES (?, ?, ?)`

	result, err := r.db.conn.ExecContext(ctx, query,
		engagement.VideoID,
		engagement.Views,
		engagement.Impressions,
	)
	if err != nil {
		return fmt.Errorf("failed to insert engagement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read engagement id: %w", err)
	}
	engagement.ID = id

	return nil
}

func (r *EngagementRepository) update(ctx context.Context, engagement *models.VideoEngagement) error {
	query := `UPDATE video_engagements SET views = ?, impressions = ? WHERE id = ?`
	if r.db.dbType == TypePostgres {
		query = `UPDATE video_engagements SET views = $1, impressions = $2 WHERE id = $3`
	}

	_, err := r.db.conn.ExecContext(ctx, query,
		engagement.Views,
		engagement.Impressions,
		engagement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update engagement: %w", err)
	}
	return nil
}
