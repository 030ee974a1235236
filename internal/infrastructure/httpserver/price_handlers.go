package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (s *Server) getPrices(c echo.Context) error {
	world, err := s.resolveWorld(c)
	if err != nil {
		return err
	}

	rawIDs := c.QueryParam("ids")
	if rawIDs == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ids query parameter is required")
	}
	parts := strings.Split(rawIDs, ",")
	itemIDs := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid item id: "+p)
		}
		itemIDs = append(itemIDs, id)
	}

	result, err := s.priceSvc.GetPrices(c.Request().Context(), world, itemIDs)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) listWorlds(c echo.Context) error {
	worlds, err := s.priceSource.FetchWorlds(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, worlds)
}

func (s *Server) listDataCenters(c echo.Context) error {
	dcs, err := s.priceSource.FetchDataCenters(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, dcs)
}

// invalidateCacheEntry drops one cached snapshot. Manual correction only.
func (s *Server) invalidateCacheEntry(c echo.Context) error {
	itemID, err := strconv.Atoi(c.Param("itemID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item ID")
	}
	world := c.Param("world")
	if world == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "world is required")
	}
	if err := s.priceCache.Invalidate(c.Request().Context(), world, itemID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
