package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
	Market   Market   `mapstructure:"market"`
	News     News     `mapstructure:"news"`
	AI       AI       `mapstructure:"ai"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the database. An empty DSN selects
// the in-memory stores.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Market holds the configuration for the market-data provider.
type Market struct {
	Provider       string  `mapstructure:"provider"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// News holds the configuration for RSS news ingestion.
type News struct {
	RSSURLs        []string `mapstructure:"rss_urls"`
	IngestInterval int      `mapstructure:"ingest_interval_minutes"`
}

// AI holds the configuration for the OpenRouter text-generation service.
type AI struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Public is the subset of configuration exposed over the API.
type Public struct {
	NewsRSSURLs        []string `json:"newsRssUrls"`
	MarketDataProvider string   `json:"marketDataProvider"`
}

// Public returns the caller-visible view of the configuration.
func (c *Config) Public() Public {
	return Public{
		NewsRSSURLs:        c.News.RSSURLs,
		MarketDataProvider: c.Market.Provider,
	}
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 4000)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("market.provider", "stooq")
	viper.SetDefault("market.rate_limit", 5) // requests per second
	viper.SetDefault("market.rate_limit_burst", 2)
	viper.SetDefault("news.ingest_interval_minutes", 15)
	viper.SetDefault("ai.model", "openai/gpt-4o-mini")

	// Secrets come from the environment, never the config file.
	_ = viper.BindEnv("ai.api_key", "OPENROUTER_API_KEY")
	_ = viper.BindEnv("database.dsn", "DATABASE_DSN")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
