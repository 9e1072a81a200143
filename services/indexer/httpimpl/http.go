// Package httpimpl exposes the ledger over a JSON REST API built on echo.
package httpimpl

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/bsv-blockchain/utxoindexer/errors"
	"github.com/bsv-blockchain/utxoindexer/services/ledger"
	"github.com/bsv-blockchain/utxoindexer/settings"
	"github.com/bsv-blockchain/utxoindexer/ulogger"
	"github.com/bsv-blockchain/utxoindexer/util/servicemanager"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ordishs/gocore"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP serves the indexer API.
type HTTP struct {
	logger    ulogger.Logger
	settings  *settings.Settings
	ledger    ledger.Interface
	e         *echo.Echo
	startTime time.Time
	addr      net.Addr
	healthFn  func(ctx context.Context, checkLiveness bool) (int, string, error)
}

// New creates the echo server and registers all routes.
//
//	GET  /alive                         liveness
//	GET  /health                        readiness, including the ledger store
//	POST {prefix}/blocks                submit a block
//	GET  {prefix}/balance/:address      balance of an address
//	POST {prefix}/rollback?height=N     roll back to height N
//	GET  {prefix}/height                current height
//	GET  {prefix}/block/:height/json    stored block at height
//	GET  {prefix}/utxos/:address/json   unspent outputs of an address
//	GET  {prefix}/utxo/:txid/:index/json single output, spent or not
func New(logger ulogger.Logger, tSettings *settings.Settings, l ledger.Interface) (*HTTP, error) {
	initPrometheusMetrics()

	e := echo.New()
	e.Debug = tSettings.Indexer.EchoDebug
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: tSettings.Indexer.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		MaxAge:       86400,
	}))

	if tSettings.Indexer.BodyLimit != "" {
		e.Use(middleware.BodyLimit(tSettings.Indexer.BodyLimit))
	}

	e.Use(middleware.Gzip())
	e.Use(metricsMiddleware())

	if e.Debug {
		e.Use(customLoggerMiddleware(logger))
	}

	h := &HTTP{
		logger:    logger,
		settings:  tSettings,
		ledger:    l,
		e:         e,
		startTime: time.Now(),
		healthFn:  l.Health,
	}

	e.GET("/alive", func(c echo.Context) error {
		return c.String(http.StatusOK, fmt.Sprintf("Indexer service is alive. Uptime: %s\n", time.Since(h.startTime)))
	})

	e.GET("/health", func(c echo.Context) error {
		status, details, err := h.healthFn(c.Request().Context(), false)
		if err != nil && status == http.StatusOK {
			status = http.StatusServiceUnavailable
		}

		return c.String(status, details)
	})

	e.GET("/services", func(c echo.Context) error {
		return c.JSON(http.StatusOK, servicemanager.GetListenerInfos())
	})

	apiGroup := e.Group(tSettings.Indexer.APIPrefix)

	apiGroup.POST("/blocks", h.SubmitBlock)
	apiGroup.GET("/balance/:address", h.GetBalance)
	apiGroup.POST("/rollback", h.Rollback)
	apiGroup.GET("/height", h.GetHeight)
	apiGroup.GET("/block/:height/json", h.GetBlock)
	apiGroup.GET("/utxos/:address/json", h.GetUTXOs)
	apiGroup.GET("/utxo/:txid/:index/json", h.GetUTXO)

	if tSettings.PrometheusEndpoint != "" {
		e.GET(tSettings.PrometheusEndpoint, echo.WrapHandler(promhttp.Handler()))
	}

	if tSettings.StatsPrefix != "" {
		e.GET(tSettings.StatsPrefix+"stats", AdaptStdHandler(gocore.HandleStats))
		e.GET(tSettings.StatsPrefix+"reset", AdaptStdHandler(gocore.ResetStats))
		e.GET(tSettings.StatsPrefix+"*", AdaptStdHandler(gocore.HandleOther))
	}

	return h, nil
}

// SetHealthFunc replaces the /health check, e.g. with the service manager aggregate.
func (h *HTTP) SetHealthFunc(fn func(ctx context.Context, checkLiveness bool) (int, string, error)) {
	h.healthFn = fn
}

func AdaptStdHandler(handler func(w http.ResponseWriter, r *http.Request)) echo.HandlerFunc {
	return func(c echo.Context) error {
		handler(c.Response().Writer, c.Request())
		return nil
	}
}

// ServeHTTP makes the API usable as a plain http.Handler, mostly in tests.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.e.ServeHTTP(w, r)
}

// Start listens on addr and serves until ctx is done. readyCh is closed once the listener
// is open; Addr reports the bound address afterwards.
func (h *HTTP) Start(ctx context.Context, addr string, readyCh chan<- struct{}) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewServiceError("[Indexer] failed to listen on %s", addr, err)
	}

	h.addr = listener.Addr()
	h.e.Listener = listener

	servicemanager.AddListenerInfo(fmt.Sprintf("Indexer HTTP listening on %s", h.addr))
	h.logger.Infof("[Indexer] HTTP service listening on %s", h.addr)

	go func() {
		<-ctx.Done()

		h.logger.Infof("[Indexer] HTTP service shutting down")

		if err := h.e.Shutdown(context.Background()); err != nil {
			h.logger.Errorf("[Indexer] HTTP service shutdown error: %s", err)
		}
	}()

	if readyCh != nil {
		close(readyCh)
	}

	if err = h.e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.NewServiceError("[Indexer] HTTP server failed", err)
	}

	return nil
}

func (h *HTTP) Addr() net.Addr {
	return h.addr
}

func (h *HTTP) Stop(ctx context.Context) error {
	return h.e.Shutdown(ctx)
}

func customLoggerMiddleware(logger ulogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Infof("http request: Method=%s, URI=%s, RemoteAddr=%s, RequestID=%s, Status=%d, Duration=%v, err=%v",
				c.Request().Method, c.Request().RequestURI, c.RealIP(), c.Response().Header().Get(echo.HeaderXRequestID),
				c.Response().Status, time.Since(start), err)

			return nil
		}
	}
}

func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			status := c.Response().Status

			var httpErr *echo.HTTPError
			if err != nil && errors.As(err, &httpErr) {
				status = httpErr.Code
			}

			prometheusHTTPRequests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).Inc()
			prometheusHTTPDuration.WithLabelValues(c.Path()).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
