package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iov-one/block-explorer/cmd/api/app/handlers"
	"github.com/iov-one/block-explorer/pkg/config"
	"github.com/iov-one/block-explorer/pkg/feed"
	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/logger"
	"github.com/iov-one/block-explorer/pkg/metrics"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/store"
	"github.com/iov-one/block-explorer/utils"
	"github.com/iov-one/weave/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators served by the API. Archive is optional.
type Deps struct {
	Indexer    *indexer.Client
	State      *state.Store
	Reconciler *feed.Reconciler
	Archive    *store.Store
}

type App struct {
	Server *echo.Echo
	Deps
	ctx context.Context
}

func (a *App) Initialize(ctx context.Context, conf *config.Configuration, deps Deps) {
	a.ctx = ctx
	a.Deps = deps

	e := echo.New()
	e.HideBanner = true
	g := e.Group("/api")

	blocksHandler := handlers.BlocksHandler{
		Indexer:    deps.Indexer,
		State:      deps.State,
		Reconciler: deps.Reconciler,
		PageSize:   conf.PageSize,
	}
	blockApi := g.Group("/blocks")
	blockApi.GET("", blocksHandler.GetBlocks)
	blockApi.GET("/latest", blocksHandler.GetLatestBlocks)
	blockApi.GET("/:round", blocksHandler.GetBlock)

	txsHandler := handlers.TxsHandler{
		Indexer:    deps.Indexer,
		State:      deps.State,
		Reconciler: deps.Reconciler,
		PageSize:   conf.PageSize,
	}
	txApi := g.Group("/txs")
	txApi.GET("", txsHandler.GetTxs)
	txApi.GET("/latest", txsHandler.GetLatestTxs)
	txApi.GET("/:id", txsHandler.GetTx)

	accountsHandler := handlers.AccountsHandler{Indexer: deps.Indexer}
	g.GET("/accounts/:address", accountsHandler.GetAccount)

	assetsHandler := handlers.AssetsHandler{Indexer: deps.Indexer}
	g.GET("/assets/:id", assetsHandler.GetAsset)

	statsHandler := handlers.StatsHandler{Indexer: deps.Indexer, State: deps.State}
	g.GET("/stats", statsHandler.GetStats)

	g.GET("/notes/decode", handlers.DecodeNote)

	if deps.Archive != nil {
		archiveHandler := handlers.ArchiveHandler{Store: deps.Archive, PageSize: conf.PageSize}
		g.GET("/archive/rounds", archiveHandler.GetRounds)
	}

	origins := allowedOrigins(conf.AllowedOrigins)
	liveHandler := handlers.LiveHandler{
		State: deps.State,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(origins, r.Header.Get("Origin"))
			},
		},
	}
	g.GET("/live", liveHandler.Stream)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet},
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10, // 1 KB
	}))

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); ok {
			e.DefaultHTTPErrorHandler(he, c)
			return
		}
		httpCode := StatusCode(err)
		if httpCode >= http.StatusInternalServerError {
			logger.GetLogger().Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		err = &echo.HTTPError{
			Code:     httpCode,
			Message:  utils.Message(false, err.Error()),
			Internal: err,
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
	a.Server = e
}

// StatusCode maps a registered error to the HTTP status returned for it.
func StatusCode(err error) int {
	switch {
	case errors.ErrNotFound.Is(err):
		return http.StatusNotFound
	case errors.ErrInput.Is(err), store.ErrLimit.Is(err), store.ErrRange.Is(err):
		return http.StatusBadRequest
	case indexer.ErrFailedResponse.Is(err), indexer.ErrUnavailable.Is(err), indexer.ErrDecode.Is(err):
		return http.StatusBadGateway
	case indexer.ErrNotConfigured.Is(err):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// StartFeed primes the state store and keeps it in step with the push
// channel until ctx is cancelled. A nil client only primes the store.
func (a *App) StartFeed(ctx context.Context, client *feed.Client) {
	log := logger.With("feed")
	if err := a.Reconciler.Refresh(ctx, 0); err != nil {
		log.Warn().Err(err).Msg("initial refresh incomplete")
	}
	if client == nil {
		return
	}

	messages := make(chan models.FeedMessage)
	go a.Reconciler.Run(ctx, messages)
	go func() {
		if err := client.Run(ctx, messages); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("push channel lost, live data is no longer updated")
		}
	}()
}

func (a *App) Run(ctx context.Context, port string) {
	go func() {
		if err := a.Server.Start(":" + port); err != nil {
			a.Server.Logger.Info("Shutting down the server")
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(ctx); err != nil {
		a.Server.Logger.Fatal(err)
	}
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
