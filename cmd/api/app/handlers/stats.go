package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/logger"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/views"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

type StatsHandler struct {
	Indexer *indexer.Client
	State   *state.Store
}

// e.GET("/stats", h.GetStats)
func (h *StatsHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		m views.Market
		g errgroup.Group
	)

	g.Go(func() error {
		price, err := h.Indexer.Price(ctx)
		if logThirdParty(ctx, err, "price") {
			m.Price = strconv.FormatFloat(price, 'f', -1, 64)
		}
		return nil
	})
	g.Go(func() error {
		supply, err := h.Indexer.CirculatingSupply(ctx)
		if logThirdParty(ctx, err, "circulating supply") {
			m.CirculatingSupply = supply
		}
		return nil
	})
	_ = g.Wait()

	return c.JSON(http.StatusOK, views.NewStatsView(h.State.Snapshot(), m))
}

// logThirdParty reports whether err is nil. Unconfigured endpoints are not
// logged.
func logThirdParty(ctx context.Context, err error, what string) bool {
	if err == nil {
		return true
	}
	if !indexer.ErrNotConfigured.Is(err) && ctx.Err() == nil {
		logger.GetLogger().Warn().Err(err).Msgf("cannot fetch %s", what)
	}
	return false
}
