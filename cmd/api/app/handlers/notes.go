package handlers

import (
	"net/http"
	"strings"

	"github.com/iov-one/block-explorer/pkg/format"
	"github.com/labstack/echo/v4"
)

// e.GET("/notes/decode?note=:base64", DecodeNote)
//
// Base64 has no spaces, so a space in note is an unescaped '+' the query
// decoding turned into a space.
func DecodeNote(c echo.Context) error {
	note := strings.ReplaceAll(c.QueryParam("note"), " ", "+")
	return c.JSON(http.StatusOK, format.DecodeNote(note))
}
