package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/glamweave/dyebudget/internal/core/domain/budget"
	"github.com/glamweave/dyebudget/internal/core/domain/market"
	"github.com/labstack/echo/v4"
)

func (s *Server) findAlternatives(c echo.Context) error {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dye ID")
	}

	world, err := s.resolveWorld(c)
	if err != nil {
		return err
	}

	opts := budget.SearchOptions{}
	if v := c.QueryParam("max_price"); v != "" {
		if opts.MaxPrice, err = strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_price")
		}
	}
	if v := c.QueryParam("max_distance"); v != "" {
		if opts.MaxDistance, err = strconv.ParseFloat(v, 64); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_distance")
		}
	}
	if v := c.QueryParam("sort"); v != "" {
		opts.SortBy = budget.SortMode(v)
		if !opts.SortBy.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "sort must be one of price, color_match, value_score")
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	result, err := s.budgetSvc.FindAlternatives(c.Request().Context(), world, itemID, opts)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// resolveWorld canonicalizes the :world path parameter against the
// authoritative list. Unknown worlds are a client error, lookup transport
// failures map like any other upstream failure.
func (s *Server) resolveWorld(c echo.Context) (string, error) {
	world := c.Param("world")
	if world == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "world is required")
	}
	canonical, ok, err := s.priceSource.ValidateWorld(c.Request().Context(), world)
	if err != nil {
		return "", mapServiceError(err)
	}
	if !ok {
		return "", echo.NewHTTPError(http.StatusNotFound, "unknown world: "+world)
	}
	return canonical, nil
}

// mapServiceError translates typed domain errors into HTTP responses.
func mapServiceError(err error) error {
	if errors.Is(err, market.ErrTargetNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if errors.Is(err, market.ErrTooManyItems) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var apiErr *market.APIError
	if errors.As(err, &apiErr) {
		// surface upstream failures as 502 with the upstream status attached
		return echo.NewHTTPError(http.StatusBadGateway, apiErr.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
