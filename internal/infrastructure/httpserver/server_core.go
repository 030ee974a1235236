package httpserver

import (
	"time"

	"github.com/glamweave/dyebudget/internal/core/ports"
	customMiddleware "github.com/glamweave/dyebudget/internal/infrastructure/httpserver/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type ServerDeps struct {
	BudgetService  ports.BudgetService
	PriceService   ports.PriceService
	PriceCache     ports.PriceCache
	PriceSource    ports.PriceSource
	Catalog        ports.DyeCatalog
	HealthCheckers []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	budgetSvc      ports.BudgetService
	priceSvc       ports.PriceService
	priceCache     ports.PriceCache
	priceSource    ports.PriceSource
	catalog        ports.DyeCatalog
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		budgetSvc:      deps.BudgetService,
		priceSvc:       deps.PriceService,
		priceCache:     deps.PriceCache,
		priceSource:    deps.PriceSource,
		catalog:        deps.Catalog,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
