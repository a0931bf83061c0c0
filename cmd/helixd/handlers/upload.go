package handlers

import (
	"errors"
	"net/http"

	apierr "github.com/helixlab/helix/pkg/api/types/errors"
	"github.com/helixlab/helix/pkg/blob"
	"github.com/labstack/echo/v4"
)

// UploadHandler stores the request body as a blob at the pathname given by query "filename".
//
// A blob at the same pathname is overwritten.
func UploadHandler(store blob.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		filename := c.QueryParam("filename")
		if filename == "" {
			return apierr.BadRequest(`filename is required. pass it as query "?filename=..."`, nil)
		}

		ctype := c.Request().Header.Get(echo.HeaderContentType)
		if ctype == "" {
			ctype = echo.MIMEOctetStream
		}

		obj, err := store.Put(ctx, filename, c.Request().Body, ctype)
		if errors.Is(err, blob.ErrBadPathname) {
			return apierr.BadRequest("filename should be a relative path of a file", err)
		} else if err != nil {
			return apierr.InternalServerError(err)
		}
		return c.JSON(http.StatusOK, obj)
	}
}
