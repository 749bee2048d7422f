package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
}

type AppConfig struct {
	Env         string
	Port        int
	Debug       bool
	LogLevel    string
	CORSOrigins []string
}

type MongoDBConfig struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

type CatalogConfig struct {
	SeedPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	setDefaults()
	bindEnvVariables()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.port", 8080)
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.loglevel", "info")
	viper.SetDefault("app.corsorigins", []string{"*"})

	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.dbname", "telcodesk")
	viper.SetDefault("mongodb.timeout", "10s")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("openai.baseurl", "https://api.openai.com/v1")
	viper.SetDefault("openai.model", "gpt-4")

	viper.SetDefault("ratelimit.enabled", true)
	viper.SetDefault("ratelimit.requests", 30)
	viper.SetDefault("ratelimit.window", "60s")

	viper.SetDefault("catalog.seedpath", "./configs/services.yaml")
}

func bindEnvVariables() {
	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.debug", "APP_DEBUG")
	viper.BindEnv("app.loglevel", "LOG_LEVEL")
	viper.BindEnv("app.corsorigins", "CORS_ORIGINS")

	viper.BindEnv("mongodb.uri", "MONGODB_URI", "MONGO_URI")
	viper.BindEnv("mongodb.dbname", "MONGO_DB_NAME")

	viper.BindEnv("redis.addr", "REDIS_ADDR", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("openai.apikey", "OPENAI_API_KEY")
	viper.BindEnv("openai.baseurl", "OPENAI_BASE_URL")
	viper.BindEnv("openai.model", "OPENAI_MODEL")

	viper.BindEnv("ratelimit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("ratelimit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("ratelimit.window", "RATE_LIMIT_WINDOW")

	viper.BindEnv("catalog.seedpath", "CATALOG_SEED_PATH")
}
