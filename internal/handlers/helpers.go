package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/aora/backend/internal/middleware"
	"github.com/anonto42/aora/backend/internal/repositories"
	"github.com/anonto42/aora/backend/internal/storage"
)

// getAuthIDFromContext returns the identity set by the auth middleware, or ""
func getAuthIDFromContext(c echo.Context) string {
	authID, _ := c.Get(middleware.AuthIDKey).(string)
	return authID
}

// repositoryError maps a repository error class to an HTTP error
func repositoryError(err error) error {
	var dup *repositories.DuplicateFieldError
	switch {
	case errors.As(err, &dup):
		return echo.NewHTTPError(http.StatusConflict, echo.Map{"field": dup.Field, "message": dup.Error()})
	case errors.Is(err, repositories.ErrInvalidMedia):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, repositories.ErrUpload):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// formFile opens an uploaded multipart file. It returns a nil file when the
// field is absent; the caller closes the returned multipart.File.
func formFile(c echo.Context, field string) (*storage.File, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+field+" upload")
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "Cannot read "+field+" upload")
	}
	return &storage.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, f, nil
}
