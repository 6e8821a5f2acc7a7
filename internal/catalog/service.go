// Package catalog owns every video state transition and engagement count.
package catalog

import (
	"context"
	"fmt"
	"io"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/kdimtricp/videocatalog/internal/models"
	"github.com/kdimtricp/videocatalog/internal/storage"
)

type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	FindAvailableByID(ctx context.Context, id int64) (*models.Video, error)
	Save(ctx context.Context, video *models.Video) error
	MarkDeleted(ctx context.Context, id int64) (bool, error)
	ListAvailable(ctx context.Context) ([]models.Video, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Video, error)
}

type EngagementRepository interface {
	FindByVideoID(ctx context.Context, videoID int64) (*models.VideoEngagement, bool, error)
	Save(ctx context.Context, engagement *models.VideoEngagement) error
}

// Service is the video lifecycle service. Each method is a separate unit of work against the
// store; nothing spans two records atomically.
type Service struct {
	videos      VideoRepository
	engagements EngagementRepository
	content     storage.ContentSource
	log         *log.Helper
}

func NewService(videos VideoRepository, engagements EngagementRepository, content storage.ContentSource, logger log.Logger) *Service {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Service{
		videos:      videos,
		engagements: engagements,
		content:     content,
		log:         log.NewHelper(log.With(logger, "component", "catalog")),
	}
}

// Publish stores video as a new live record. Any caller-supplied id or deleted flag is discarded.
func (s *Service) Publish(ctx context.Context, video *models.Video) (*models.Video, error) {
	video.ID = 0
	video.Deleted = false
	if video.Cast == nil {
		video.Cast = []string{}
	}

	if err := s.videos.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("publishing video: %w", err)
	}

	s.log.WithContext(ctx).Infof("video published: id=%d", video.ID)
	return video, nil
}

// GetByID returns the video only while it exists and is not deleted.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	return s.videos.FindAvailableByID(ctx, id)
}

// Update persists a record previously obtained from GetByID. It does not re-check existence.
func (s *Service) Update(ctx context.Context, video *models.Video) (*models.Video, error) {
	if video.Cast == nil {
		video.Cast = []string{}
	}

	if err := s.videos.Save(ctx, video); err != nil {
		return nil, fmt.Errorf("updating video %d: %w", video.ID, err)
	}

	s.log.WithContext(ctx).Infof("video updated: id=%d", video.ID)
	return video, nil
}

// SoftDelete marks the video deleted. It reports false both for ids that never existed and for
// videos that are already deleted.
func (s *Service) SoftDelete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.videos.MarkDeleted(ctx, id)
	if err != nil {
		return false, fmt.Errorf("deleting video %d: %w", id, err)
	}

	if deleted {
		s.log.WithContext(ctx).Infof("video soft-deleted: id=%d", id)
	}
	return deleted, nil
}

func (s *Service) ListAvailable(ctx context.Context) ([]models.Video, error) {
	return s.videos.ListAvailable(ctx)
}

// Search ANDs every provided criterion. Deleted videos never match.
func (s *Service) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Video, error) {
	if criteria.IsEmpty() {
		return s.videos.ListAvailable(ctx)
	}
	return s.videos.Search(ctx, criteria)
}

// GetContent opens the payload of a live video, or returns models.ErrVideoNotFound.
func (s *Service) GetContent(ctx context.Context, id int64) (io.ReadSeekCloser, error) {
	if _, err := s.videos.FindAvailableByID(ctx, id); err != nil {
		return nil, err
	}

	content, err := s.content.Open(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("opening content for video %d: %w", id, err)
	}
	return content, nil
}

// RecordView adds one view to the video's counter. The video id is not validated.
func (s *Service) RecordView(ctx context.Context, id int64) error {
	return s.increment(ctx, id, func(e *models.VideoEngagement) { e.Views++ })
}

// RecordImpression adds one impression to the video's counter. The video id is not validated.
func (s *Service) RecordImpression(ctx context.Context, id int64) error {
	return s.increment(ctx, id, func(e *models.VideoEngagement) { e.Impressions++ })
}

// GetEngagement returns the stored counters, or an unsaved zero record when none exist yet.
func (s *Service) GetEngagement(ctx context.Context, id int64) (*models.VideoEngagement, error) {
	return s.loadEngagement(ctx, id)
}

// increment is a plain read-modify-write; concurrent calls for one video may lose updates.
func (s *Service) increment(ctx context.Context, id int64, apply func(*models.VideoEngagement)) error {
	engagement, err := s.loadEngagement(ctx, id)
	if err != nil {
		return err
	}

	apply(engagement)

	if err := s.engagements.Save(ctx, engagement); err != nil {
		return fmt.Errorf("saving engagement for video %d: %w", id, err)
	}
	return nil
}

func (s *Service) loadEngagement(ctx context.Context, id int64) (*models.VideoEngagement, error) {
	engagement, found, err := s.engagements.FindByVideoID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading engagement for video %d: %w", id, err)
	}
	if !found {
		return models.NewVideoEngagement(id), nil
	}
	return engagement, nil
}
