package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/iov-one/block-explorer/pkg/feed"
	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/views"
	"github.com/labstack/echo/v4"
)

type BlocksHandler struct {
	Indexer    *indexer.Client
	State      *state.Store
	Reconciler *feed.Reconciler
	PageSize   int
}

// e.GET("/blocks?page=:page&nav=:nav", h.GetBlocks)
func (h *BlocksHandler) GetBlocks(c echo.Context) error {
	var blocks []models.Block
	ctrl, err := paginate(c, h.PageSize, func(ctx context.Context, page, pageSize int) (int, error) {
		res, err := h.Indexer.Rounds(ctx, page, pageSize)
		if err != nil {
			return 0, err
		}
		blocks = res.Items
		return res.NumOfPages, nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Paged[views.BlockView]{
		Items:      views.NewBlockViews(blocks),
		Pagination: ctrl.State(c.Path()),
	})
}

// e.GET("/blocks/latest", h.GetLatestBlocks)
func (h *BlocksHandler) GetLatestBlocks(c echo.Context) error {
	snap, err := latest(c.Request().Context(), h.State, h.Reconciler, func(s state.State) bool {
		return len(s.LatestBlocks) > 0
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views.NewBlockViews(snap.LatestBlocks))
}

// e.GET("/blocks/:round", h.GetBlock)
func (h *BlocksHandler) GetBlock(c echo.Context) error {
	round, err := uintParam(c, "round")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	block, err := h.Indexer.Round(ctx, round)
	if err != nil {
		return err
	}
	assets := fetchAssets(ctx, h.Indexer, views.AssetIDs(block.Transactions))
	return c.JSON(http.StatusOK, views.NewBlockView(*block, assets, true))
}

// latestRefreshTimeout bounds a refresh started by a request.
const latestRefreshTimeout = 15 * time.Second

// latest returns the current snapshot, refreshing it first when loaded
// reports the wanted part as missing. The refresh may be shared with the feed,
// so it does not end with the request.
func latest(ctx context.Context, st *state.Store, r *feed.Reconciler, loaded func(state.State) bool) (state.State, error) {
	snap := st.Snapshot()
	if loaded(snap) || r == nil {
		return snap, nil
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), latestRefreshTimeout)
	defer cancel()
	if err := r.Refresh(rctx, snap.Round); err != nil && !loaded(st.Snapshot()) {
		return snap, err
	}
	return st.Snapshot(), nil
}
