package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/logger"
	"github.com/iov-one/block-explorer/pkg/pagination"
	"github.com/iov-one/block-explorer/pkg/views"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// ParamNav selects a navigation action applied after the requested page was
// loaded.
const ParamNav = "nav"

// assetFetchLimit bounds concurrent asset lookups per request.
const assetFetchLimit = 4

// Paged is the response body of every paginated list.
type Paged[T any] struct {
	Items      []T              `json:"items"`
	Pagination pagination.State `json:"pagination"`
}

// paginate loads the page requested by the URL, then applies the nav
// parameter and loads the resulting page when it moved.
func paginate(c echo.Context, pageSize int, fetch pagination.Fetcher) (*pagination.Controller, error) {
	ctx := c.Request().Context()

	ctrl := pagination.New(pageSize)
	ctrl.SetURL(c.QueryParams())
	if err := pagination.Fetch(ctx, ctrl, fetch); err != nil {
		return nil, err
	}

	if nav := c.QueryParam(ParamNav); nav != "" {
		before := ctrl.Page()
		ctrl.Apply(nav)
		if ctrl.Page() != before {
			if err := pagination.Fetch(ctx, ctrl, fetch); err != nil {
				return nil, err
			}
		}
	}
	return ctrl, nil
}

// fetchAssets loads the given asset definitions. Assets that cannot be
// fetched are left out so that their amounts render as "N/A".
func fetchAssets(ctx context.Context, client *indexer.Client, ids []uint64) views.Assets {
	var (
		mu     sync.Mutex
		assets = make(views.Assets, len(ids))
		g      errgroup.Group
	)
	g.SetLimit(assetFetchLimit)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			asset, err := client.Asset(ctx, id)
			if err != nil {
				logger.GetLogger().Warn().Err(err).Uint64("asset", id).Msg("cannot fetch asset")
				return nil
			}
			mu.Lock()
			assets[id] = *asset
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return assets
}

func uintParam(c echo.Context, name string) (uint64, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
