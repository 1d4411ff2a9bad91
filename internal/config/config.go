package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Provider ProviderConfig `mapstructure:"provider"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Signals  SignalsConfig  `mapstructure:"signals"`
	DarkPool DarkPoolConfig `mapstructure:"dark_pool"`
	Cron     CronConfig     `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type ProviderConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type IngestConfig struct {
	Symbols            []string `mapstructure:"symbols"`
	BucketWidthMinutes int      `mapstructure:"bucket_width_minutes"`
	Timezone           string   `mapstructure:"timezone"`
	SnapshotRaw        bool     `mapstructure:"snapshot_raw"`
}

type SignalsConfig struct {
	ShortWindow    int     `mapstructure:"short_window"`
	LongWindow     int     `mapstructure:"long_window"`
	IntradayWindow int     `mapstructure:"intraday_window"`
	NeutralBand    float64 `mapstructure:"neutral_band"`
	BouncePctFloor float64 `mapstructure:"bounce_pct_floor"`
}

type DarkPoolConfig struct {
	WindowDays     int     `mapstructure:"window_days"`
	TopLevelsLimit int     `mapstructure:"top_levels_limit"`
	Proximity      float64 `mapstructure:"proximity"`
}

type CronConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Ingest  string `mapstructure:"ingest"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("provider.base_url", "https://api.unusualwhales.com")
	v.SetDefault("provider.timeout", "15s")
	v.SetDefault("provider.retries", 3)
	v.SetDefault("provider.retry_delay", "2s")
	v.SetDefault("ingest.symbols", []string{"SPY"})
	v.SetDefault("ingest.bucket_width_minutes", 5)
	v.SetDefault("ingest.timezone", "America/New_York")
	v.SetDefault("ingest.snapshot_raw", true)
	v.SetDefault("signals.short_window", 12)
	v.SetDefault("signals.long_window", 48)
	v.SetDefault("signals.intraday_window", 18)
	v.SetDefault("signals.neutral_band", 50000)
	v.SetDefault("signals.bounce_pct_floor", -15)
	v.SetDefault("dark_pool.window_days", 5)
	v.SetDefault("dark_pool.top_levels_limit", 10)
	v.SetDefault("dark_pool.proximity", 0)
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.ingest", "@every 5m")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
