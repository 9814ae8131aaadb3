package config

import (
	"errors"
	"testing"
)

func TestLoadTableDefaults(t *testing.T) {
	cfg, err := LoadTable()
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	r := cfg.Rules()
	if r.StartingChips != 1000 || r.SmallBlind != 5 || r.BigBlind != 10 {
		t.Fatalf("unexpected stakes %+v", r)
	}
	if r.SmallBet != 10 || r.BigBet != 20 || r.MaxRaisesPerStreet != 3 {
		t.Fatalf("unexpected limits %+v", r)
	}
	if r.MinPlayers != 2 || r.MaxPlayers != 9 {
		t.Fatalf("unexpected seats %+v", r)
	}
}

func TestLoadTableOverrides(t *testing.T) {
	t.Setenv("SMALL_BLIND", "1")
	t.Setenv("BIG_BLIND", "2")
	t.Setenv("MAX_RAISES_PER_STREET", "4")

	cfg, err := LoadTable()
	if err != nil {
		t.Fatalf("LoadTable() error = %v", err)
	}
	if cfg.SmallBlind != 1 || cfg.BigBlind != 2 || cfg.MaxRaisesPerStreet != 4 {
		t.Fatalf("unexpected table config: %+v", cfg)
	}
}

func TestTableValidate(t *testing.T) {
	base := TableConfig{StartingChips: 100, SmallBlind: 1, BigBlind: 2, SmallBet: 2, BigBet: 4, MaxRaisesPerStreet: 3, MinPlayers: 2, MaxPlayers: 6}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := []func(*TableConfig){
		func(c *TableConfig) { c.StartingChips = 0 },
		func(c *TableConfig) { c.BigBlind = 0 },
		func(c *TableConfig) { c.BigBet = 1 },
		func(c *TableConfig) { c.MaxRaisesPerStreet = 0 },
		func(c *TableConfig) { c.MinPlayers = 7 },
		func(c *TableConfig) { c.MaxPlayers = 23 },
	}
	for i, mutate := range bad {
		cfg := base
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidTable) {
			t.Fatalf("case %d: expected ErrInvalidTable, got %v", i, err)
		}
	}
}

func TestLoadTableRejectsInvalid(t *testing.T) {
	t.Setenv("MIN_PLAYERS", "5")
	t.Setenv("MAX_PLAYERS", "3")
	if _, err := LoadTable(); err == nil {
		t.Fatal("LoadTable() expected error, got nil")
	}
}
