// Package config loads the configuration of the ledger service.
//
// Values are read from, in increasing priority: built-in defaults, an
// optional config.yaml, a .env file and the environment. Environment
// variables use the LEDGER_ prefix with dots replaced by underscores, e.g.
// LEDGER_SYNC_MAX_ATTEMPTS for sync.max_attempts.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/envelope-zero/ledger/pkg/balance"
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/rollover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrAPIURL  = errors.New("api_url must be set to the externally reachable URL of the API")
	ErrOwnerID = errors.New("owner_id must be a valid UUID")
)

// Config is the configuration of the service.
type Config struct {
	APIURL           *url.URL
	Port             int
	GinMode          string
	LogFormat        string
	DatabasePath     string
	Owner            uuid.UUID
	CorsAllowOrigins []string
	EnablePprof      bool
	LegacyPiggybanks balance.LegacyPolicy
	UndoWindow       time.Duration
	Sync             Sync
	Rollover         Rollover
	Draft            Draft
	AMQP             AMQP
}

// Sync configures the sync coordinator.
type Sync struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BaseBackoff   time.Duration `mapstructure:"base_backoff"`
	MaxBackoff    time.Duration `mapstructure:"max_backoff"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	ProbeInterval time.Duration `mapstructure:"probe_interval"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Rollover configures the month boundary scheduler.
type Rollover struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Draft configures the draft transaction guard.
type Draft struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// AMQP configures the change feed. It is disabled if URL is empty.
type AMQP struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

// Enabled reports if the change feed is configured.
func (a AMQP) Enabled() bool {
	return a.URL != ""
}

// Coordinator returns the coordinator configuration for the owner.
func (c Config) Coordinator() coordinator.Config {
	return coordinator.Config{
		Owner:         c.Owner,
		UndoWindow:    c.UndoWindow,
		MaxAttempts:   c.Sync.MaxAttempts,
		BaseBackoff:   c.Sync.BaseBackoff,
		MaxBackoff:    c.Sync.MaxBackoff,
		WriteTimeout:  c.Sync.WriteTimeout,
		ProbeInterval: c.Sync.ProbeInterval,
		SweepInterval: c.Sync.SweepInterval,
		LegacyPolicy:  c.LegacyPiggybanks,
	}
}

// defaults sets the default values.
func defaults(v *viper.Viper) {
	d := coordinator.DefaultConfig()

	v.SetDefault("port", 8080)
	v.SetDefault("gin_mode", "release")
	v.SetDefault("log_format", "")
	v.SetDefault("database_path", "data/ledger.db")
	v.SetDefault("cors_allow_origins", []string{})
	v.SetDefault("enable_pprof", false)
	v.SetDefault("legacy_piggybanks", "include")
	v.SetDefault("undo_window", d.UndoWindow)

	v.SetDefault("sync.max_attempts", d.MaxAttempts)
	v.SetDefault("sync.base_backoff", d.BaseBackoff)
	v.SetDefault("sync.max_backoff", d.MaxBackoff)
	v.SetDefault("sync.write_timeout", d.WriteTimeout)
	v.SetDefault("sync.probe_interval", d.ProbeInterval)
	v.SetDefault("sync.sweep_interval", d.SweepInterval)

	v.SetDefault("rollover.interval", rollover.DefaultInterval)

	v.SetDefault("draft.limit", 30)
	v.SetDefault("draft.window", time.Hour)

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "ledger.changes")
	v.SetDefault("amqp.queue", "")
}

// Load reads the configuration. The directories are searched for a
// config.yaml, the first one found is used.
func Load(dirs ...string) (Config, error) {
	// A missing .env file is not an error, the environment is used as is
	if err := godotenv.Load(); err == nil {
		log.Debug().Str("component", "config").Msg("loaded .env file")
	}

	v := viper.New()
	defaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		log.Info().Str("component", "config").Str("file", v.ConfigFileUsed()).Msg("loaded config file")
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return parse(v)
}

// parse converts the viper values to the configuration.
func parse(v *viper.Viper) (Config, error) {
	c := Config{
		Port:             v.GetInt("port"),
		GinMode:          v.GetString("gin_mode"),
		LogFormat:        v.GetString("log_format"),
		DatabasePath:     v.GetString("database_path"),
		CorsAllowOrigins: v.GetStringSlice("cors_allow_origins"),
		EnablePprof:      v.GetBool("enable_pprof"),
		LegacyPiggybanks: balance.ParseLegacyPolicy(v.GetString("legacy_piggybanks")),
		UndoWindow:       v.GetDuration("undo_window"),
		Sync: Sync{
			MaxAttempts:   v.GetInt("sync.max_attempts"),
			BaseBackoff:   v.GetDuration("sync.base_backoff"),
			MaxBackoff:    v.GetDuration("sync.max_backoff"),
			WriteTimeout:  v.GetDuration("sync.write_timeout"),
			ProbeInterval: v.GetDuration("sync.probe_interval"),
			SweepInterval: v.GetDuration("sync.sweep_interval"),
		},
		Rollover: Rollover{Interval: v.GetDuration("rollover.interval")},
		Draft: Draft{
			Limit:  v.GetInt("draft.limit"),
			Window: v.GetDuration("draft.window"),
		},
		AMQP: AMQP{
			URL:      v.GetString("amqp.url"),
			Exchange: v.GetString("amqp.exchange"),
			Queue:    v.GetString("amqp.queue"),
		},
	}

	apiURL := v.GetString("api_url")
	if apiURL == "" {
		return Config{}, ErrAPIURL
	}

	u, err := url.Parse(strings.TrimSuffix(apiURL, "/"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrAPIURL, err)
	}
	c.APIURL = u

	owner, err := uuid.Parse(v.GetString("owner_id"))
	if err != nil || owner == uuid.Nil {
		return Config{}, ErrOwnerID
	}
	c.Owner = owner

	return c, nil
}
