package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/iov-one/weave/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	// Base URL of the indexer and node REST API.
	IndexerURL string
	// Push channel websocket URI.
	FeedWsURI string
	// Third party statistics endpoints, optional.
	PriceURL             string
	CirculatingSupplyURL string

	// Requests per second allowed against the indexer.
	IndexerRateLimit float64
	IndexerTimeout   time.Duration

	PageSize    int
	LatestLimit int

	ReconnectAttempts int
	ReconnectDelay    time.Duration
	// Rounds the local view may lag behind the push channel before it is
	// reported as out of sync.
	OutOfSyncThreshold uint64

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBSSL  string

	KafkaBrokerAddress string
	KafkaTopic         string

	// Allowed origins for CORS
	AllowedOrigins string
	Port           string
	LogLevel       string
}

var defaults = map[string]interface{}{
	"indexer_url":            "http://localhost:8980",
	"feed_ws_uri":            "",
	"price_url":              "",
	"circulating_supply_url": "",
	"indexer_rate_limit":     20.0,
	"indexer_timeout":        "15s",
	"page_size":              25,
	"latest_limit":           10,
	"reconnect_attempts":     10,
	"reconnect_delay":        "3s",
	"out_of_sync_threshold":  3,
	"postgres_host":          "",
	"postgres_db_name":       "",
	"postgres_user":          "",
	"postgres_password":      "",
	"postgres_ssl_enable":    "disable",
	"kafka_broker_address":   "",
	"kafka_topic":            "explorer-rounds",
	"allowed_origins":        "*",
	"port":                   "8080",
	"log_level":              "info",
}

// NewViper returns a viper instance reading environment variables with the
// explorer defaults. A .env file in the working directory is loaded first
// when present.
func NewViper() *viper.Viper {
	// Missing .env is fine, the environment may be set externally.
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from v and validates it.
func Load(v *viper.Viper) (*Configuration, error) {
	conf := &Configuration{
		IndexerURL:           strings.TrimRight(v.GetString("indexer_url"), "/"),
		FeedWsURI:            v.GetString("feed_ws_uri"),
		PriceURL:             v.GetString("price_url"),
		CirculatingSupplyURL: v.GetString("circulating_supply_url"),
		IndexerRateLimit:     v.GetFloat64("indexer_rate_limit"),
		IndexerTimeout:       v.GetDuration("indexer_timeout"),
		PageSize:             v.GetInt("page_size"),
		LatestLimit:          v.GetInt("latest_limit"),
		ReconnectAttempts:    v.GetInt("reconnect_attempts"),
		ReconnectDelay:       v.GetDuration("reconnect_delay"),
		OutOfSyncThreshold:   v.GetUint64("out_of_sync_threshold"),
		DBHost:               v.GetString("postgres_host"),
		DBName:               v.GetString("postgres_db_name"),
		DBUser:               v.GetString("postgres_user"),
		DBPass:               v.GetString("postgres_password"),
		DBSSL:                v.GetString("postgres_ssl_enable"),
		KafkaBrokerAddress:   v.GetString("kafka_broker_address"),
		KafkaTopic:           v.GetString("kafka_topic"),
		AllowedOrigins:       v.GetString("allowed_origins"),
		Port:                 v.GetString("port"),
		LogLevel:             v.GetString("log_level"),
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Configuration) Validate() error {
	if c.IndexerURL == "" {
		return errors.Wrap(errors.ErrInput, "indexer url is required")
	}
	if _, err := url.ParseRequestURI(c.IndexerURL); err != nil {
		return errors.Wrapf(errors.ErrInput, "indexer url: %s", err)
	}
	if c.FeedWsURI != "" {
		u, err := url.Parse(c.FeedWsURI)
		if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
			return errors.Wrapf(errors.ErrInput, "feed uri must be a ws:// or wss:// url, got %q", c.FeedWsURI)
		}
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return errors.Wrapf(errors.ErrInput, "page size must be within [1, 100], got %d", c.PageSize)
	}
	if c.LatestLimit < 1 || c.LatestLimit > 100 {
		return errors.Wrapf(errors.ErrInput, "latest limit must be within [1, 100], got %d", c.LatestLimit)
	}
	if c.ReconnectAttempts < 0 {
		return errors.Wrap(errors.ErrInput, "reconnect attempts cannot be negative")
	}
	if c.IndexerRateLimit <= 0 {
		return errors.Wrap(errors.ErrInput, "indexer rate limit must be positive")
	}
	return nil
}

// ArchiveEnabled reports whether a Postgres round archive is configured.
func (c *Configuration) ArchiveEnabled() bool {
	return c.DBHost != "" && c.DBName != ""
}

// PostgresURI builds the connection string for the round archive.
func (c *Configuration) PostgresURI() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s", c.DBUser, c.DBPass,
		c.DBHost, c.DBName, c.DBSSL)
}
