package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server       Server       `mapstructure:"server"`
	Database     Database     `mapstructure:"database"`
	Logger       Logger       `mapstructure:"logger"`
	Auth         Auth         `mapstructure:"auth"`
	OCR          OCR          `mapstructure:"ocr"`
	MarketNews   MarketNews   `mapstructure:"market_news"`
	SymbolSearch SymbolSearch `mapstructure:"symbol_search"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port      int    `mapstructure:"port"`
	UploadDir string `mapstructure:"upload_dir"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Auth holds the configuration for token issuance.
type Auth struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// OCR holds the configuration for the screenshot scanning pipeline.
type OCR struct {
	TempDir        string `mapstructure:"temp_dir"`
	Language       string `mapstructure:"language"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

// MarketNews holds the configuration for the NewsAPI proxy.
type MarketNews struct {
	APIKey          string  `mapstructure:"api_key"`
	CacheTTLMinutes int     `mapstructure:"cache_ttl_minutes"`
	RateLimit       float64 `mapstructure:"rate_limit"`
	RateLimitBurst  int     `mapstructure:"rate_limit_burst"`
}

// SymbolSearch holds the configuration for the Twelve Data proxy.
type SymbolSearch struct {
	APIKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
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
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.upload_dir", "uploads")
	viper.SetDefault("database.dsn", "journal.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.max_size_mb", 50)
	viper.SetDefault("logger.max_backups", 3)
	viper.SetDefault("auth.token_ttl_minutes", 24*60)
	viper.SetDefault("ocr.temp_dir", "uploads/temp")
	viper.SetDefault("ocr.language", "eng")
	viper.SetDefault("ocr.max_upload_bytes", 10*1024*1024)
	viper.SetDefault("market_news.cache_ttl_minutes", 20)
	viper.SetDefault("market_news.rate_limit", 5) // requests per second
	viper.SetDefault("market_news.rate_limit_burst", 2)
	viper.SetDefault("symbol_search.rate_limit", 5)
	viper.SetDefault("symbol_search.rate_limit_burst", 2)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
