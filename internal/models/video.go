package models

import (
	"net/url"

	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// ErrVideoNotFound is returned whenever a video is absent or soft-deleted.
var ErrVideoNotFound = kerrors.NotFound("VIDEO_NOT_FOUND", "video not found")

type Video struct {
	ID          int64    `gorm:"primaryKey;autoIncrement"`
	Title       string   `gorm:"not null"`
	Synopsis    string   `gorm:"size:1000;not null"`
	Director    string   `gorm:"not null"`
	Cast        []string `gorm:"column:cast_members;serializer:json"`
	ReleaseYear int      `gorm:"not null"`
	Genre       string   `gorm:"not null"`
	RunningTime int      `gorm:"not null"`
	Deleted     bool     `gorm:"not null"`
}

func (Video) TableName() string {
	return "videos"
}

func NewVideo(title, synopsis, director string, cast []string, releaseYear int, genre string, runningTime int) *Video {
	if cast == nil {
		cast = []string{}
	}
	return &Video{
		Title:       title,
		Synopsis:    synopsis,
		Director:    director,
		Cast:        cast,
		ReleaseYear: releaseYear,
		Genre:       genre,
		RunningTime: runningTime,
	}
}

// SearchCriteria narrows a video search. A nil field imposes no constraint.
type SearchCriteria struct {
	Director *string
	Genre    *string
	Title    *string
}

// NewSearchCriteria builds criteria from query parameters. A parameter that is present narrows
// the search even when its value is blank; only absent keys are unconstrained.
func NewSearchCriteria(query url.Values) SearchCriteria {
	return SearchCriteria{
		Director: param(query, "director"),
		Genre:    param(query, "genre"),
		Title:    param(query, "title"),
	}
}

func (c SearchCriteria) IsEmpty() bool {
	return c.Director == nil && c.Genre == nil && c.Title == nil
}

func param(query url.Values, key string) *string {
	if !query.Has(key) {
		return nil
	}
	v := query.Get(key)
	return &v
}
