package handlers

import (
	"context"
	"net/http"

	"github.com/iov-one/block-explorer/pkg/feed"
	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/views"
	"github.com/labstack/echo/v4"
)

type TxsHandler struct {
	Indexer    *indexer.Client
	State      *state.Store
	Reconciler *feed.Reconciler
	PageSize   int
}

// e.GET("/txs?page=:page&nav=:nav", h.GetTxs)
func (h *TxsHandler) GetTxs(c echo.Context) error {
	var txs []models.Transaction
	ctrl, err := paginate(c, h.PageSize, func(ctx context.Context, page, pageSize int) (int, error) {
		res, err := h.Indexer.Transactions(ctx, page, pageSize)
		if err != nil {
			return 0, err
		}
		txs = res.Items
		return res.NumOfPages, nil
	})
	if err != nil {
		return err
	}

	assets := fetchAssets(c.Request().Context(), h.Indexer, views.AssetIDs(txs))
	return c.JSON(http.StatusOK, Paged[views.TransactionView]{
		Items:      views.NewTransactionViews(txs, assets),
		Pagination: ctrl.State(c.Path()),
	})
}

// e.GET("/txs/latest", h.GetLatestTxs)
func (h *TxsHandler) GetLatestTxs(c echo.Context) error {
	ctx := c.Request().Context()
	snap, err := latest(ctx, h.State, h.Reconciler, func(s state.State) bool {
		return len(s.LatestTxns) > 0
	})
	if err != nil {
		return err
	}
	assets := fetchAssets(ctx, h.Indexer, views.AssetIDs(snap.LatestTxns))
	return c.JSON(http.StatusOK, views.NewTransactionViews(snap.LatestTxns, assets))
}

// e.GET("/txs/:id", h.GetTx)
func (h *TxsHandler) GetTx(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide a transaction id")
	}

	ctx := c.Request().Context()
	tx, err := h.Indexer.Transaction(ctx, id)
	if err != nil {
		return err
	}
	assets := fetchAssets(ctx, h.Indexer, views.AssetIDs([]models.Transaction{*tx}))
	return c.JSON(http.StatusOK, views.NewTransactionView(*tx, assets))
}
