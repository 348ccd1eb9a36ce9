package handlers

import (
	"context"
	"net/http"

	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/store"
	"github.com/labstack/echo/v4"
)

type ArchiveHandler struct {
	Store    *store.Store
	PageSize int
}

// e.GET("/archive/rounds?page=:page&nav=:nav", h.GetRounds)
func (h *ArchiveHandler) GetRounds(c echo.Context) error {
	var rounds []models.ArchivedRound
	ctrl, err := paginate(c, h.PageSize, func(ctx context.Context, page, pageSize int) (int, error) {
		res, err := h.Store.RoundsPage(ctx, page, pageSize)
		if err != nil {
			return 0, err
		}
		rounds = res.Items
		return res.NumOfPages, nil
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Paged[models.ArchivedRound]{
		Items:      rounds,
		Pagination: ctrl.State(c.Path()),
	})
}
