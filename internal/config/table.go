package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"

	"limit-holdem/internal/game"
)

var ErrInvalidTable = errors.New("invalid table config")

// TableConfig is fixed when a room is created.
type TableConfig struct {
	StartingChips      int64 `env:"STARTING_CHIPS" envDefault:"1000"`
	SmallBlind         int64 `env:"SMALL_BLIND" envDefault:"5"`
	BigBlind           int64 `env:"BIG_BLIND" envDefault:"10"`
	SmallBet           int64 `env:"SMALL_BET" envDefault:"10"`
	BigBet             int64 `env:"BIG_BET" envDefault:"20"`
	MaxRaisesPerStreet int   `env:"MAX_RAISES_PER_STREET" envDefault:"3"`
	MinPlayers         int   `env:"MIN_PLAYERS" envDefault:"2"`
	MaxPlayers         int   `env:"MAX_PLAYERS" envDefault:"9"`
}

func LoadTable() (TableConfig, error) {
	var cfg TableConfig
	if err := env.Parse(&cfg); err != nil {
		return TableConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return TableConfig{}, err
	}
	return cfg, nil
}

func (c TableConfig) Validate() error {
	switch {
	case c.StartingChips <= 0:
		return fmt.Errorf("%w: starting chips must be positive", ErrInvalidTable)
	case c.SmallBlind <= 0 || c.BigBlind < c.SmallBlind:
		return fmt.Errorf("%w: blinds %d/%d", ErrInvalidTable, c.SmallBlind, c.BigBlind)
	case c.SmallBet <= 0 || c.BigBet < c.SmallBet:
		return fmt.Errorf("%w: bet sizes %d/%d", ErrInvalidTable, c.SmallBet, c.BigBet)
	case c.MaxRaisesPerStreet < 1:
		return fmt.Errorf("%w: max raises per street must be at least 1", ErrInvalidTable)
	case c.MinPlayers < 2 || c.MaxPlayers < c.MinPlayers:
		return fmt.Errorf("%w: players %d..%d", ErrInvalidTable, c.MinPlayers, c.MaxPlayers)
	case c.MaxPlayers > 22:
		// 22 players use 44 hole cards plus 8 for the board and burns.
		return fmt.Errorf("%w: at most 22 players fit one deck", ErrInvalidTable)
	}
	return nil
}

func (c TableConfig) Rules() game.Rules {
	return game.Rules{
		StartingChips:      c.StartingChips,
		SmallBlind:         c.SmallBlind,
		BigBlind:           c.BigBlind,
		SmallBet:           c.SmallBet,
		BigBet:             c.BigBet,
		MaxRaisesPerStreet: c.MaxRaisesPerStreet,
		MinPlayers:         c.MinPlayers,
		MaxPlayers:         c.MaxPlayers,
	}
}
