package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/kdimtricp/videocatalog/internal/models"
)

const (
	reasonValidation = "VALIDATION_FAILED"
	reasonMalformed  = "MALFORMED_REQUEST"

	msgBlank   = "must not be blank"
	msgNull    = "must not be null"
	msgNotID   = "must be a number"
	msgGeneric = "An unexpected error occurred"
)

// VideoRequest is the body of publish and update requests. String limits match the postgres
// column sizes.
type VideoRequest struct {
	Title       string   `json:"title" validate:"notblank,max=255"`
	Synopsis    string   `json:"synopsis" validate:"notblank,max=1000"`
	Director    string   `json:"director" validate:"notblank,max=255"`
	Cast        CastList `json:"cast"`
	ReleaseYear *int     `json:"releaseYear" validate:"required"`
	Genre       string   `json:"genre" validate:"notblank,max=255"`
	RunningTime *int     `json:"runningTime" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate returns a 400 error whose metadata maps each offending field to a message.
func (r *VideoRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return kerrors.BadRequest(reasonValidation, "request validation failed").WithMetadata(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank":
		return msgBlank
	case "required":
		return msgNull
	case "max":
		return fmt.Sprintf("size must be between 0 and %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ToVideo builds a new, unsaved video. Call Validate first.
func (r *VideoRequest) ToVideo() *models.Video {
	return models.NewVideo(r.Title, r.Synopsis, r.Director, r.Cast, *r.ReleaseYear, r.Genre, *r.RunningTime)
}

// ApplyTo copies the editable fields onto an existing video. ID and Deleted are left untouched.
func (r *VideoRequest) ApplyTo(video *models.Video) {
	video.Title = r.Title
	video.Synopsis = r.Synopsis
	video.Director = r.Director
	video.Cast = []string(r.Cast)
	video.ReleaseYear = *r.ReleaseYear
	video.Genre = r.Genre
	video.RunningTime = *r.RunningTime
}

// CastList accepts either a JSON array of names or a single comma-separated string.
type CastList []string

func (c *CastList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*c = list
		return nil
	}

	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("cast must be an array of strings or a comma-separated string")
	}

	names := []string{}
	for _, name := range strings.Split(joined, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	*c = names
	return nil
}

type VideoResponse struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Synopsis    string   `json:"synopsis"`
	Director    string   `json:"director"`
	Cast        []string `json:"cast"`
	ReleaseYear int      `json:"releaseYear"`
	Genre       string   `json:"genre"`
	RunningTime int      `json:"runningTime"`
}

func newVideoResponse(v *models.Video) VideoResponse {
	cast := v.Cast
	if cast == nil {
		cast = []string{}
	}
	return VideoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Synopsis:    v.Synopsis,
		Director:    v.Director,
		Cast:        cast,
		ReleaseYear: v.ReleaseYear,
		Genre:       v.Genre,
		RunningTime: v.RunningTime,
	}
}

func newVideoResponses(videos []models.Video) []VideoResponse {
	out := make([]VideoResponse, 0, len(videos))
	for i := range videos {
		out = append(out, newVideoResponse(&videos[i]))
	}
	return out
}

type EngagementResponse struct {
	VideoID     int64 `json:"videoId"`
	Views       int64 `json:"views"`
	Impressions int64 `json:"impressions"`
}

func newEngagementResponse(videoID int64, e *models.VideoEngagement) EngagementResponse {
	return EngagementResponse{
		VideoID:     videoID,
		Views:       e.Views,
		Impressions: e.Impressions,
	}
}
