package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/block-explorer/pkg/config"
	"github.com/iov-one/block-explorer/pkg/emitter"
	"github.com/iov-one/block-explorer/pkg/feed"
	"github.com/iov-one/block-explorer/pkg/indexer"
	"github.com/iov-one/block-explorer/pkg/logger"
	"github.com/iov-one/block-explorer/pkg/models"
	"github.com/iov-one/block-explorer/pkg/state"
	"github.com/iov-one/block-explorer/pkg/store"
	"github.com/iov-one/weave/errors"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "collector",
		Short:         "Archive rounds announced on the push channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}
	cmd.Flags().String("feed-ws-uri", "", "push channel websocket URI")
	cmd.Flags().String("kafka-broker-address", "", "kafka broker to publish rounds to")
	cmd.Flags().String("log-level", "", "log level")
	for key, flag := range map[string]string{
		"feed_ws_uri":          "feed-ws-uri",
		"kafka_broker_address": "kafka-broker-address",
		"log_level":            "log-level",
	} {
		_ = v.BindPFlag(key, cmd.Flags().Lookup(flag))
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// run follows the push channel and hands every new round to the archive and
// the Kafka topic until interrupted or the channel is lost for good.
func run(v *viper.Viper) error {
	conf, err := config.Load(v)
	if err != nil {
		return err
	}
	logger.Init(conf.LogLevel)
	log := logger.GetLogger()

	if conf.FeedWsURI == "" {
		return errors.Wrap(errors.ErrInput, "feed uri is required")
	}

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
		sinks = append(sinks, store.NewStore(db))
	}
	if conf.KafkaBrokerAddress != "" {
		k := emitter.NewKafkaEmitter(conf.KafkaBrokerAddress, conf.KafkaTopic, logger.With("kafka"))
		defer k.Close()
		sinks = append(sinks, k)
	}
	if len(sinks) == 0 {
		return errors.Wrap(errors.ErrInput, "neither postgres nor kafka is configured")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := indexer.NewClient(indexer.Options{
		BaseURL:   conf.IndexerURL,
		Timeout:   conf.IndexerTimeout,
		RateLimit: conf.IndexerRateLimit,
		Logger:    logger.With("indexer"),
	})
	st := state.NewStore(conf.OutOfSyncThreshold)
	rec := feed.NewReconciler(client, st, conf.LatestLimit, logger.With("reconciler"), sinks...)
	fc := feed.NewClient(conf.FeedWsURI, conf.ReconnectAttempts, conf.ReconnectDelay, logger.With("feed"))

	messages := make(chan models.FeedMessage)
	done := make(chan struct{})
	go func() {
		defer close(done)
		rec.Run(ctx, messages)
	}()

	log.Info().Int("sinks", len(sinks)).Str("uri", conf.FeedWsURI).Msg("collecting rounds")
	err = fc.Run(ctx, messages)
	cancel()
	<-done

	if feed.ErrReconnectExhausted.Is(err) {
		return err
	}
	return nil
}
