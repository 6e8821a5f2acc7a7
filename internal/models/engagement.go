package models

// VideoEngagement holds the aggregate counters for one video id.
// It references the video by id only and outlives a soft delete.
type VideoEngagement struct {
	ID          int64
	VideoID     int64
	Views       int64
	Impressions int64
}

// NewVideoEngagement returns an unsaved zero-valued counter record.
func NewVideoEngagement(videoID int64) *VideoEngagement {
	return &VideoEngagement{VideoID: videoID}
}

func (e *VideoEngagement) IsPersisted() bool {
	return e.ID != 0
}
