package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) listDyes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.catalog.GetAll())
}
