package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`
	DB         `yaml:"db"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`

	CORSOrigins    []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	MigrateOnStart bool     `yaml:"migrate_on_start" env:"MIGRATE_ON_START" env-default:"true"`
	ErrorLogPath   string   `yaml:"error_log_path" env:"ERROR_LOG_PATH" env-default:"errors.log"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

type DB struct {
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	Name     string `yaml:"name" env:"DB_NAME" env-required:"true"`
}

// MustConfig loads .env when present, then the YAML file named by
// CONFIG_PATH with environment overrides on top.
func MustConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("cannot read .env: %s", err)
	}

	cfg, err := Load(configPath())
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}
