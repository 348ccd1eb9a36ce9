package handlers

import (
	"net/http"

	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/views"
	"github.com/labstack/echo/v4"
)

type AccountsHandler struct {
	Indexer *indexer.Client
}

// e.GET("/accounts/:address", h.GetAccount)
func (h *AccountsHandler) GetAccount(c echo.Context) error {
	address := c.Param("address")
	if address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Please provide valid address")
	}

	ctx := c.Request().Context()
	acc, err := h.Indexer.Account(ctx, address)
	if err != nil {
		return err
	}

	assets := fetchAssets(ctx, h.Indexer, views.HoldingIDs(*acc))
	return c.JSON(http.StatusOK, views.NewAccountView(*acc, assets))
}

type AssetsHandler struct {
	Indexer *indexer.Client
}

// e.GET("/assets/:id", h.GetAsset)
func (h *AssetsHandler) GetAsset(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}

	asset, err := h.Indexer.Asset(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views.NewAssetView(*asset))
}
