package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeIndexer serves canned indexer responses. Paged endpoints report
// pageCount pages and echo the requested page in the returned items.
type fakeIndexer struct {
	pageCount int
	bodies    map[string]string

	mu       sync.Mutex
	requests []string
}

func (f *fakeIndexer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.RequestURI())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/v1/rounds":
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		fmt.Fprintf(w, `{"items":[{"round":%d,"proposer":"P%d","timestamp":1600000000}],"num_of_pages":%d}`,
			1000-page, page, f.pageCount)
		return
	case "/v1/transactions":
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		fmt.Fprintf(w, `{"items":[{"id":"TX%d","tx-type":"pay","sender":"S","fee":1000,
			"payment-transaction":{"receiver":"R","amount":1500000}}],"num_of_pages":%d}`,
			page, f.pageCount)
		return
	}
	body, ok := f.bodies[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeIndexer) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func newFakeIndexer(t *testing.T, pageCount int, bodies map[string]string) (*indexer.Client, *fakeIndexer) {
	t.Helper()
	f := &fakeIndexer{pageCount: pageCount, bodies: bodies}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return indexer.NewClient(indexer.Options{
		BaseURL:              srv.URL,
		PriceURL:             srv.URL + "/price",
		CirculatingSupplyURL: srv.URL + "/circulating",
		Logger:               zerolog.Nop(),
	}), f
}

func newContext(t *testing.T, target, path string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	ectx := e.NewContext(req, rec)
	ectx.SetPath(path)
	if len(params) > 0 {
		require.Equal(t, 0, len(params)%2, "params must be name value pairs")
		var names, values []string
		for i := 0; i < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		ectx.SetParamNames(names...)
		ectx.SetParamValues(values...)
	}
	return ectx, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func pageOf(t *testing.T, uri string) string {
	t.Helper()
	u, err := url.Parse(uri)
	require.NoError(t, err)
	return u.Query().Get("page")
}
