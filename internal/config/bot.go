package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL  string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	Name   string `env:"BOT_NAME" envDefault:"bot"`
	RoomID string `env:"ROOM_ID" envDefault:"main"`
	// StartGame makes the bot send start_game once it is seated.
	StartGame bool `env:"BOT_START_GAME" envDefault:"false"`
	// Hands is how many hands to play before leaving; 0 plays until the table closes.
	Hands int `env:"BOT_HANDS" envDefault:"0"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
