package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/block-explorer/cmd/api/app"
	"github.com/iov-one/block-explorer/pkg/config"
	"github.com/iov-one/block-explorer/pkg/feed"
	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/logger"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/store"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Serve the block explorer API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}
	cmd.Flags().String("port", "", "HTTP port to listen on")
	cmd.Flags().String("indexer-url", "", "base URL of the indexer API")
	cmd.Flags().String("feed-ws-uri", "", "push channel websocket URI")
	cmd.Flags().String("log-level", "", "log level")
	for key, flag := range map[string]string{
		"port":        "port",
		"indexer_url": "indexer-url",
		"feed_ws_uri": "feed-ws-uri",
		"log_level":   "log-level",
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(v *viper.Viper) error {
	conf, err := config.Load(v)
	if err != nil {
		return err
	}
	logger.Init(conf.LogLevel)
	log := logger.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := indexer.NewClient(indexer.Options{
		BaseURL:              conf.IndexerURL,
		Timeout:              conf.IndexerTimeout,
		RateLimit:            conf.IndexerRateLimit,
		PriceURL:             conf.PriceURL,
		CirculatingSupplyURL: conf.CirculatingSupplyURL,
		Logger:               logger.With("indexer"),
	})
	st := state.NewStore(conf.OutOfSyncThreshold)
	deps := app.Deps{Indexer: client, State: st}

	var sinks []feed.Sink
	if conf.ArchiveEnabled() {
		db, err := sql.Open("postgres", conf.PostgresURI())
		if err != nil {
			return fmt.Errorf("cannot connect to postgres: %s", err)
		}
		defer db.Close()

		if err := store.EnsureSchema(db); err != nil {
			return fmt.Errorf("ensure schema: %s", err)
		}
		deps.Archive = store.NewStore(db)
		sinks = append(sinks, deps.Archive)
	}
	deps.Reconciler = feed.NewReconciler(client, st, conf.LatestLimit, logger.With("reconciler"), sinks...)

	a := app.App{}
	a.Initialize(ctx, conf, deps)

	var fc *feed.Client
	if conf.FeedWsURI != "" {
		fc = feed.NewClient(conf.FeedWsURI, conf.ReconnectAttempts, conf.ReconnectDelay, logger.With("feed"))
	} else {
		log.Warn().Msg("no push channel configured, latest data is only loaded once")
	}
	go a.StartFeed(ctx, fc)

	go func() {
		defer cancel()
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
	}()

	log.Info().Str("port", conf.Port).Msg("starting api")
	a.Run(ctx, conf.Port)
	return nil
}
