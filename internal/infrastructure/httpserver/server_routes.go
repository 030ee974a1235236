package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.GET("/alternatives/:world/:itemID", s.findAlternatives)
	api.GET("/prices/:world", s.getPrices)
	api.GET("/worlds", s.listWorlds)
	api.GET("/data-centers", s.listDataCenters)
	api.GET("/dyes", s.listDyes)
	api.DELETE("/cache/:world/:itemID", s.invalidateCacheEntry)
}
