package handlers

import (
	"errors"
	"log"
	"net/http"

	"crime_records_go/services"

	"github.com/labstack/echo/v4"
)

// serviceError maps the service-layer sentinel errors onto HTTP statuses.
// Anything unrecognized is logged and surfaced as a 500 with a generic
// message so internal details never leak to the client.
func serviceError(err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidHierarchy):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicateName),
		errors.Is(err, services.ErrDuplicateIdentity),
		errors.Is(err, services.ErrHasActiveChildren):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	log.Printf("[ERROR] %s: %v", fallback, err)
	return echo.NewHTTPError(http.StatusInternalServerError, fallback)
}
