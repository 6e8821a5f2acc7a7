package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/kdimtricp/videocatalog/internal/api"
	"github.com/kdimtricp/videocatalog/internal/catalog"
	"github.com/kdimtricp/videocatalog/internal/database"
	"github.com/kdimtricp/videocatalog/internal/metrics"
	"github.com/kdimtricp/videocatalog/internal/storage"
)

type TestServer struct {
	Server  *httptest.Server
	DB      *database.DB
	Metrics *metrics.Metrics
}

// setupTestServer runs the full stack over a throwaway sqlite database.
func setupTestServer(t *testing.T) *TestServer {
	t.Helper()

	db, err := database.NewDB(database.Config{
		Type:       database.TypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	logger := log.NewStdLogger(io.Discard)
	service := catalog.NewService(
		database.NewVideoRepository(db),
		database.NewEngagementRepository(db),
		storage.NewPlaceholderSource(),
		logger,
	)
	m := metrics.New()

	server := httptest.NewServer(api.NewRouter(api.NewApp(service, m, logger)))
	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return &TestServer{Server: server, DB: db, Metrics: m}
}

// newCatalogServer serves the router over an arbitrary Catalog, without metrics.
func newCatalogServer(t *testing.T, c api.Catalog) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(api.NewRouter(api.NewApp(c, nil, log.NewStdLogger(io.Discard))))
	t.Cleanup(server.Close)
	return server
}

func inceptionRequest() map[string]any {
	return map[string]any{
		"title":       "Inception",
		"synopsis":    "A thief who steals corporate secrets through dream-sharing technology.",
		"director":    "Christopher Nolan",
		"cast":        []string{"Leonardo DiCaprio", "Joseph Gordon-Levitt"},
		"releaseYear": 2010,
		"genre":       "Sci-Fi",
		"runningTime": 148,
	}
}

func videoRequest(title, director, genre string) map[string]any {
	return map[string]any{
		"title":       title,
		"synopsis":    "Synopsis of " + title,
		"director":    director,
		"cast":        []string{"Someone"},
		"releaseYear": 2000,
		"genre":       genre,
		"runningTime": 100,
	}
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return string(data)
}

func publish(t *testing.T, baseURL string, body map[string]any) api.VideoResponse {
	t.Helper()

	resp := doRequest(t, http.MethodPost, baseURL+"/videos", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Publish returned %d: %s", resp.StatusCode, readBody(t, resp))
	}
	return decodeBody[api.VideoResponse](t, resp)
}
