package handlers

import (
	"net/http"

	"github.com/hermon-k/roomshare/backend/internal/engine"
	"github.com/labstack/echo/v4"
)

// engineHTTPError translates a typed engine failure into an Echo HTTP error.
func engineHTTPError(err error) error {
	switch engine.KindOf(err) {
	case engine.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case engine.KindInvalidArgument:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case engine.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case engine.KindIncompatible:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case engine.KindUnavailable:
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
