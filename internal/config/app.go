package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ModeInteractive = "interactive"
	ModeServer      = "server"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type RatesAPI struct {
	BaseURL string `mapstructure:"base_url"`
}

type Integrity struct {
	Strict bool `mapstructure:"strict"`
}

type Cache struct {
	MaxItems        int64 `mapstructure:"max_items"`
	WriteBackOnMiss bool  `mapstructure:"write_back_on_miss"`
}

type Scheduler struct {
	Enabled  bool   `mapstructure:"enabled"`
	Cron     string `mapstructure:"cron"`
	Location string `mapstructure:"location"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type App struct {
	Mode string `mapstructure:"mode"`
}

type AppConfig struct {
	App        App        `mapstructure:"app"`
	HTTPServer HTTPServer `mapstructure:"http_server"`
	DbServer   DbServer   `mapstructure:"db_server"`
	HTTPClient HTTPClient `mapstructure:"http_client"`
	RatesAPI   RatesAPI   `mapstructure:"rates_api"`
	Integrity  Integrity  `mapstructure:"integrity"`
	Cache      Cache      `mapstructure:"cache"`
	Scheduler  Scheduler  `mapstructure:"scheduler"`
	Logging    Logging    `mapstructure:"logging"`
}

// Init reads config.yaml (or the file named by --config), an optional .env file
// and environment overrides. Command line flags win over everything else.
func Init(args []string) (*AppConfig, error) {
	var cfg AppConfig

	flags := pflag.NewFlagSet("exrates", pflag.ContinueOnError)
	configFile := flags.String("config", "config.yaml", "path to the yaml config file")
	flags.String("mode", ModeInteractive, "run mode: interactive or server")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(*configFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("app.mode", ModeInteractive)
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("rates_api.base_url", "https://api.nbrb.by")
	v.SetDefault("integrity.strict", false)
	v.SetDefault("cache.max_items", 10000)
	v.SetDefault("cache.write_back_on_miss", false)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cron", "0 12 * * *")
	v.SetDefault("scheduler.location", "Europe/Minsk")
	v.SetDefault("logging.level", "info")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")

	// http env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("rates_api.base_url", "RATES_API_BASE_URL")

	_ = v.BindEnv("integrity.strict", "INTEGRITY_STRICT")
	_ = v.BindEnv("cache.write_back_on_miss", "CACHE_WRITE_BACK_ON_MISS")
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("app.mode", "APP_MODE")

	if flags.Changed("mode") {
		if err := v.BindPFlag("app.mode", flags.Lookup("mode")); err != nil {
			return nil, fmt.Errorf("error binding mode flag: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.App.Mode != ModeInteractive && cfg.App.Mode != ModeServer {
		return nil, fmt.Errorf("unknown app mode %q", cfg.App.Mode)
	}

	return &cfg, nil
}
