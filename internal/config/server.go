package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	// PostgresDSN enables hand history when set.
	PostgresDSN string `env:"POSTGRES_DSN"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	DefaultRoom    string   `env:"DEFAULT_ROOM" envDefault:"main"`
	// MaxRooms caps concurrently running rooms; 0 disables the cap.
	MaxRooms int `env:"MAX_ROOMS" envDefault:"1000"`
	// AdminAPIKey guards the debug endpoints when set.
	AdminAPIKey string `env:"ADMIN_API_KEY"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
