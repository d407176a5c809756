package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	DB          DBConfig          `mapstructure:"db"`
	Cron        CronConfig        `mapstructure:"cron"`
	Gamma       GammaConfig       `mapstructure:"gamma"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Clob        ClobConfig        `mapstructure:"clob"`
	LLM         LLMConfig         `mapstructure:"llm"`
	News        NewsConfig        `mapstructure:"news"`
	Forecast    ForecastConfig    `mapstructure:"forecast"`
	Trading     TradingConfig     `mapstructure:"trading"`
	Risk        RiskConfig        `mapstructure:"risk"`
	AutoTrader  AutoTraderConfig  `mapstructure:"auto_trader"`
	PriceStream PriceStreamConfig `mapstructure:"price_stream"`
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

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	AutoTrade   string `mapstructure:"auto_trade"`
	NewsRefresh string `mapstructure:"news_refresh"`
}

type GammaConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	PageLimit  int           `mapstructure:"page_limit"`
	RatePerSec float64       `mapstructure:"rate_per_sec"`
	Burst      int           `mapstructure:"burst"`
}

type CatalogConfig struct {
	MarketTTL time.Duration `mapstructure:"market_ttl"`
	EventTTL  time.Duration `mapstructure:"event_ttl"`
}

type ClobConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	WSURL      string        `mapstructure:"ws_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	APIKey     string        `mapstructure:"api_key"`
	APISecret  string        `mapstructure:"api_secret"`
	Passphrase string        `mapstructure:"passphrase"`
	PrivateKey string        `mapstructure:"private_key"`
	Funder     string        `mapstructure:"funder"`
}

type LLMConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type NewsConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ForecastConfig struct {
	Timeout            time.Duration `mapstructure:"timeout"`
	DefaultProbability float64       `mapstructure:"default_probability"`
}

type TradingConfig struct {
	MinEdge      float64 `mapstructure:"min_edge"`
	BaseOrderUSD float64 `mapstructure:"base_order_usd"`
	MinVolume    float64 `mapstructure:"min_volume"`
	DryRun       bool    `mapstructure:"dry_run"`
}

type RiskConfig struct {
	MinOrderUSD float64 `mapstructure:"min_order_usd"`
	MaxOrderUSD float64 `mapstructure:"max_order_usd"`
	MaxEdgeSize float64 `mapstructure:"max_edge_size"`
}

type AutoTraderConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type PriceStreamConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MaxAssets       int           `mapstructure:"max_assets"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PM")
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
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.auto_trade", "@every 30m")
	v.SetDefault("cron.news_refresh", "@every 15m")
	v.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "15s")
	v.SetDefault("gamma.page_limit", 100)
	v.SetDefault("gamma.rate_per_sec", 4)
	v.SetDefault("gamma.burst", 8)
	v.SetDefault("catalog.market_ttl", "60s")
	v.SetDefault("catalog.event_ttl", "60s")
	v.SetDefault("clob.base_url", "https://clob.polymarket.com")
	v.SetDefault("clob.ws_url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	v.SetDefault("clob.timeout", "15s")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout", "8s")
	v.SetDefault("news.base_url", "https://newsapi.org/v2")
	v.SetDefault("news.page_size", 10)
	v.SetDefault("news.timeout", "10s")
	v.SetDefault("forecast.timeout", "8s")
	v.SetDefault("forecast.default_probability", 0.5)
	v.SetDefault("trading.min_edge", 0.02)
	v.SetDefault("trading.base_order_usd", 1.0)
	v.SetDefault("trading.min_volume", 10000)
	v.SetDefault("trading.dry_run", true)
	v.SetDefault("risk.min_order_usd", 0.1)
	v.SetDefault("risk.max_order_usd", 25)
	v.SetDefault("risk.max_edge_size", 1.0)
	v.SetDefault("auto_trader.enabled", false)
	v.SetDefault("price_stream.enabled", false)
	v.SetDefault("price_stream.refresh_interval", "30s")
	v.SetDefault("price_stream.max_assets", 100)

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
