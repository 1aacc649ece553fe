package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	// A missing file silently yields defaults.
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, 30, cfg.Server.ActTimeoutSeconds)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, "main", cfg.Tables[0].Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
server {
  address             = "0.0.0.0"
  port                = 9000
  act_timeout_seconds = 10
}

table "highroller" {
  num_decks           = 8
  penetration         = 0.6
  dealer_hits_soft_17 = true
  min_bet             = 2500
  max_bet             = 1000000
  blackjack_pays      = "6:5"
  buy_in              = 5000000
  max_seats           = 5
}

table "main" {
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0:9000", cfg.GetServerAddress())
	assert.Equal(t, 10, cfg.Server.ActTimeoutSeconds)
	require.Len(t, cfg.Tables, 2)

	hr := cfg.GetTableByName("highroller")
	require.NotNil(t, hr)
	rules, err := hr.Rules()
	require.NoError(t, err)
	assert.Equal(t, 8, rules.NumDecks)
	assert.Equal(t, 0.6, rules.Penetration)
	assert.True(t, rules.DealerHitsSoft17)
	assert.Equal(t, int64(2500), rules.MinBet)
	assert.Equal(t, int64(6), rules.BlackjackPays.Num)
	assert.Equal(t, int64(5), rules.BlackjackPays.Den)

	// The empty table block fills in from defaults.
	main := cfg.GetTableByName("main")
	require.NotNil(t, main)
	assert.Equal(t, "3:2", main.BlackjackPays)
	assert.Equal(t, int64(100000), main.BuyIn)
	mainRules, err := main.Rules()
	require.NoError(t, err)
	assert.Equal(t, 6, mainRules.NumDecks)
	assert.True(t, mainRules.DealerPeeks)
	assert.True(t, mainRules.OfferInsurance)
}

func TestLoadConfigWithoutServerBlock(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
table "main" {
  min_bet = 500
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.NotNil(t, cfg.Server)
	assert.Equal(t, "localhost:8080", cfg.GetServerAddress())
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 30, cfg.Server.ActTimeoutSeconds)
	require.Len(t, cfg.Tables, 1)
	assert.Equal(t, int64(500), cfg.Tables[0].MinBet)
}

func TestLoadConfigRejectsBadRatio(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
table "main" {
  blackjack_pays = "even money"
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tables = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tables = append(cfg.Tables, cfg.Tables[0])
	assert.Error(t, cfg.Validate(), "duplicate table names")

	cfg = DefaultConfig()
	cfg.Tables[0].MaxSeats = 20
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tables[0].NumDecks = 12
	assert.Error(t, cfg.Validate(), "rules validation surfaces through config")
}

func TestRulesFlagsInvert(t *testing.T) {
	t.Parallel()
	tc := TableConfig{
		Name:          "strict",
		NoPeek:        true,
		NoDoubleSplit: true,
		NoSurrender:   true,
		NoInsurance:   true,
		BlackjackPays: "3:2",
		InsurancePays: "2:1",
	}
	rules, err := tc.Rules()
	require.NoError(t, err)
	assert.False(t, rules.DealerPeeks)
	assert.False(t, rules.DoubleAfterSplit)
	assert.False(t, rules.LateSurrender)
	assert.False(t, rules.OfferInsurance)
}
