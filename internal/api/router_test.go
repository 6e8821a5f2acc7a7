package api_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/kdimtricp/videocatalog/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type openAPIDocument struct {
	OpenAPI string                    `yaml:"openapi"`
	Paths   map[string]map[string]any `yaml:"paths"`
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.Server.URL+"/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	var doc openAPIDocument
	require.NoError(t, yaml.Unmarshal([]byte(readBody(t, resp)), &doc))
	assert.True(t, strings.HasPrefix(doc.OpenAPI, "3."))
	assert.NotEmpty(t, doc.Paths)
}

func TestOpenAPIDocument_CoversEveryRoute(t *testing.T) {
	ts := setupTestServer(t)

	var doc openAPIDocument
	body := readBody(t, doRequest(t, http.MethodGet, ts.Server.URL+"/openapi.yaml", nil))
	require.NoError(t, yaml.Unmarshal([]byte(body), &doc))

	router, ok := api.NewRouter(api.NewApp(nil, nil, log.NewStdLogger(io.Discard))).(chi.Routes)
	require.True(t, ok)

	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route == "/openapi.yaml" || route == "/metrics" {
			return nil
		}
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}

		operations, found := doc.Paths[route]
		if assert.True(t, found, "route %s is not documented", route) {
			assert.Contains(t, operations, strings.ToLower(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}
