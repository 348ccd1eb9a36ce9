package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iov-one/block-explorer/pkg/config"
	"github.com/iov-one/block-explorer/pkg/feed"
	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/store"
	"github.com/iov-one/weave/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prepareApp(t *testing.T, indexerHandler http.Handler) *App {
	t.Helper()
	srv := httptest.NewServer(indexerHandler)
	t.Cleanup(srv.Close)

	client := indexer.NewClient(indexer.Options{BaseURL: srv.URL, Logger: zerolog.Nop()})
	st := state.NewStore(3)

	a := &App{}
	a.Initialize(context.Background(), &config.Configuration{
		PageSize:       25,
		LatestLimit:    10,
		AllowedOrigins: "https://explorer.example.com, https://other.example.com",
	}, Deps{
		Indexer:    client,
		State:      st,
		Reconciler: feed.NewReconciler(client, st, 10, zerolog.Nop()),
	})
	return a
}

func serve(a *App, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	a.Server.ServeHTTP(rec, req)
	return rec
}

func TestNotFoundIsMappedTo404(t *testing.T) {
	a := prepareApp(t, http.NotFoundHandler())

	rec := serve(a, "/api/txs/UNKNOWN")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["status"])
	assert.Contains(t, body["message"], "not found")
}

func TestIndexerFailureIsMappedTo502(t *testing.T) {
	a := prepareApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	rec := serve(a, "/api/blocks?page=1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRoutes(t *testing.T) {
	a := prepareApp(t, http.NotFoundHandler())

	rec := serve(a, "/api/notes/decode?note=FszNghkCXmo%3D")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hex":"16cccd8219025e6a"`)

	rec = serve(a, "/api/blocks/not-a-round")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(a, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	// The archive is not configured.
	rec = serve(a, "/api/archive/rounds")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusCode(t *testing.T) {
	cases := map[int]error{
		http.StatusNotFound:            errors.Wrap(errors.ErrNotFound, "x"),
		http.StatusBadRequest:          errors.Wrap(store.ErrLimit, "x"),
		http.StatusBadGateway:          errors.Wrap(indexer.ErrUnavailable, "x"),
		http.StatusNotImplemented:      indexer.ErrNotConfigured,
		http.StatusInternalServerError: context.Canceled,
	}
	for want, err := range cases {
		assert.Equal(t, want, StatusCode(err), "%v", err)
	}
}

func TestAllowedOrigins(t *testing.T) {
	origins := allowedOrigins(" https://a.example.com ,https://b.example.com,")
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, origins)
	assert.Equal(t, []string{"*"}, allowedOrigins(""))

	assert.True(t, originAllowed(origins, "https://b.example.com"))
	assert.False(t, originAllowed(origins, "https://evil.example.com"))
	assert.True(t, originAllowed(origins, ""))
	assert.True(t, originAllowed([]string{"*"}, "https://any.example.com"))
}
