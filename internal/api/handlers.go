package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/kdimtricp/videocatalog/api/openapi"
	"github.com/kdimtricp/videocatalog/internal/metrics"
	"github.com/kdimtricp/videocatalog/internal/models"
	"github.com/kdimtricp/videocatalog/internal/storage"
)

const maxRequestBodyBytes = 1 << 20

// Catalog is the part of catalog.Service the handlers depend on.
type Catalog interface {
	Publish(ctx context.Context, video *models.Video) (*models.Video, error)
	GetByID(ctx context.Context, id int64) (*models.Video, error)
	Update(ctx context.Context, video *models.Video) (*models.Video, error)
	SoftDelete(ctx context.Context, id int64) (bool, error)
	ListAvailable(ctx context.Context) ([]models.Video, error)
	Search(ctx context.Context, criteria models.SearchCriteria) ([]models.Video, error)
	GetContent(ctx context.Context, id int64) (io.ReadSeekCloser, error)
	RecordView(ctx context.Context, id int64) error
	RecordImpression(ctx context.Context, id int64) error
	GetEngagement(ctx context.Context, id int64) (*models.VideoEngagement, error)
}

type App struct {
	catalog Catalog
	metrics *metrics.Metrics
	log     *log.Helper
}

// NewApp wires the handlers. m may be nil, in which case /metrics is not served.
func NewApp(catalog Catalog, m *metrics.Metrics, logger log.Logger) *App {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &App{
		catalog: catalog,
		metrics: m,
		log:     log.NewHelper(log.With(logger, "component", "api", "request_id", requestIDValuer())),
	}
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// OpenAPIHandler serves the embedded OpenAPI document.
func OpenAPIHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(openapi.Document)
}

func (app *App) PublishVideoHandler(w http.ResponseWriter, r *http.Request) {
	req, err := app.decodeVideoRequest(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	video, err := app.catalog.Publish(r.Context(), req.ToVideo())
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVideoResponse(video))
}

func (app *App) UpdateVideoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	req, err := app.decodeVideoRequest(w, r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	video, err := app.catalog.GetByID(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	req.ApplyTo(video)

	updated, err := app.catalog.Update(r.Context(), video)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVideoResponse(updated))
}

func (app *App) DeleteVideoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	deleted, err := app.catalog.SoftDelete(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	if !deleted {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetVideoHandler returns the video and counts one impression for it.
func (app *App) GetVideoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	video, err := app.catalog.GetByID(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.catalog.RecordImpression(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	app.observeEngagement(metrics.KindImpression)

	writeJSON(w, http.StatusOK, newVideoResponse(video))
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.catalog.ListAvailable(r.Context())
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVideoResponses(videos))
}

// SearchVideosHandler filters by the director, genre and title query parameters. Every
// parameter present in the query narrows the result, blank ones included; with none given
// every live video is returned.
func (app *App) SearchVideosHandler(w http.ResponseWriter, r *http.Request) {
	criteria := models.NewSearchCriteria(r.URL.Query())

	videos, err := app.catalog.Search(r.Context(), criteria)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newVideoResponses(videos))
}

// PlayVideoHandler streams the whole video payload and counts one view once the content is
// available. Range headers are ignored, so every successful play is a full 200 response.
func (app *App) PlayVideoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	content, err := app.catalog.GetContent(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}
	defer content.Close()

	size, err := contentSize(content)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if err := app.catalog.RecordView(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}
	app.observeEngagement(metrics.KindView)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline;filename=%s", storage.ContentFilename(id)))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, content); err != nil {
		app.log.WithContext(r.Context()).Warnf("streaming video %d interrupted: %v", id, err)
	}
}

func (app *App) EngagementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := videoID(r)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	if _, err := app.catalog.GetByID(r.Context(), id); err != nil {
		app.writeError(w, r, err)
		return
	}

	engagement, err := app.catalog.GetEngagement(r.Context(), id)
	if err != nil {
		app.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newEngagementResponse(id, engagement))
}

// decodeVideoRequest reads and validates a publish or update body.
func (app *App) decodeVideoRequest(w http.ResponseWriter, r *http.Request) (*VideoRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req VideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.log.WithContext(r.Context()).Debugf("rejecting request body: %v", err)
		return nil, malformedBody()
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

func (app *App) observeEngagement(kind string) {
	if app.metrics != nil {
		app.metrics.ObserveEngagement(kind)
	}
}

// contentSize measures content and rewinds it to the start.
func contentSize(content io.Seeker) (int64, error) {
	size, err := content.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measuring content: %w", err)
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewinding content: %w", err)
	}
	return size, nil
}

func videoID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, invalidID()
	}
	return id, nil
}
