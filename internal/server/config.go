package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
)

// Config represents the complete server configuration. The server block
// is optional; a config file listing only tables gets default settings.
type Config struct {
	Server *ServerSettings `hcl:"server,block"`
	Tables []TableConfig   `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address           string `hcl:"address,optional"`
	Port              int    `hcl:"port,optional"`
	LogLevel          string `hcl:"log_level,optional"`
	LogFile           string `hcl:"log_file,optional"`
	ActTimeoutSeconds int    `hcl:"act_timeout_seconds,optional"`
}

// TableConfig defines one blackjack table. Payout ratios are written as
// "3:2" style strings.
type TableConfig struct {
	Name             string  `hcl:"name,label"`
	NumDecks         int     `hcl:"num_decks,optional"`
	Penetration      float64 `hcl:"penetration,optional"`
	DealerHitsSoft17 bool    `hcl:"dealer_hits_soft_17,optional"`
	NoPeek           bool    `hcl:"no_peek,optional"`
	NoDoubleSplit    bool    `hcl:"no_double_after_split,optional"`
	ResplitAces      bool    `hcl:"resplit_aces,optional"`
	NoSurrender      bool    `hcl:"no_surrender,optional"`
	NoInsurance      bool    `hcl:"no_insurance,optional"`
	MaxSplitHands    int     `hcl:"max_split_hands,optional"`
	MinBet           int64   `hcl:"min_bet,optional"`
	MaxBet           int64   `hcl:"max_bet,optional"`
	BlackjackPays    string  `hcl:"blackjack_pays,optional"`
	InsurancePays    string  `hcl:"insurance_pays,optional"`
	BuyIn            int64   `hcl:"buy_in,optional"`
	MaxSeats         int     `hcl:"max_seats,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerSettings{
			Address:           "localhost",
			Port:              8080,
			LogLevel:          "info",
			LogFile:           "blackjack-server.log",
			ActTimeoutSeconds: 30,
		},
		Tables: []TableConfig{
			{
				Name:          "main",
				BlackjackPays: "3:2",
				InsurancePays: "2:1",
				BuyIn:         100000,
				MaxSeats:      6,
			},
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server == nil {
		config.Server = &ServerSettings{}
	}
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.LogFile == "" {
		config.Server.LogFile = "blackjack-server.log"
	}
	if config.Server.ActTimeoutSeconds == 0 {
		config.Server.ActTimeoutSeconds = 30
	}

	if len(config.Tables) == 0 {
		config.Tables = DefaultConfig().Tables
	}
	for i := range config.Tables {
		if config.Tables[i].BlackjackPays == "" {
			config.Tables[i].BlackjackPays = "3:2"
		}
		if config.Tables[i].InsurancePays == "" {
			config.Tables[i].InsurancePays = "2:1"
		}
		if config.Tables[i].BuyIn == 0 {
			config.Tables[i].BuyIn = 100000
		}
		if config.Tables[i].MaxSeats == 0 {
			config.Tables[i].MaxSeats = 6
		}
	}

	return &config, nil
}

// Rules converts a table's configuration into an engine ruleset. Options
// are phrased as deviations from the default Vegas-strip table so that
// an empty block gives sensible rules.
func (t TableConfig) Rules() (game.Rules, error) {
	rules := game.DefaultRules()
	if t.NumDecks != 0 {
		rules.NumDecks = t.NumDecks
	}
	if t.Penetration != 0 {
		rules.Penetration = t.Penetration
	}
	rules.DealerHitsSoft17 = t.DealerHitsSoft17
	rules.DealerPeeks = !t.NoPeek
	rules.DoubleAfterSplit = !t.NoDoubleSplit
	rules.ResplitAces = t.ResplitAces
	rules.LateSurrender = !t.NoSurrender
	rules.OfferInsurance = !t.NoInsurance
	if t.MaxSplitHands != 0 {
		rules.MaxSplitHands = t.MaxSplitHands
	}
	if t.MinBet != 0 {
		rules.MinBet = t.MinBet
	}
	if t.MaxBet != 0 {
		rules.MaxBet = t.MaxBet
	}

	var err error
	if rules.BlackjackPays, err = game.ParseRatio(t.BlackjackPays); err != nil {
		return game.Rules{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	if rules.InsurancePays, err = game.ParseRatio(t.InsurancePays); err != nil {
		return game.Rules{}, fmt.Errorf("table %s: %w", t.Name, err)
	}

	if err := rules.Validate(); err != nil {
		return game.Rules{}, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return rules, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server == nil {
		return fmt.Errorf("server settings missing")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := make(map[string]bool)
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("duplicate table name %q", table.Name)
		}
		seen[table.Name] = true
		if table.BuyIn <= 0 {
			return fmt.Errorf("table %s: buy-in must be positive", table.Name)
		}
		if table.MaxSeats < 1 || table.MaxSeats > 7 {
			return fmt.Errorf("table %s: max seats must be between 1 and 7", table.Name)
		}
		if _, err := table.Rules(); err != nil {
			return err
		}
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetTableByName returns a table configuration by name
func (c *Config) GetTableByName(name string) *TableConfig {
	for _, table := range c.Tables {
		if table.Name == name {
			return &table
		}
	}
	return nil
}
