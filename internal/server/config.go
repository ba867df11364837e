package server

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/kalooki/internal/game"
)

// Config is the complete server configuration, loaded from an HCL file
// with environment variable overrides on top.
type Config struct {
	Server  ServerSettings   `hcl:"server,block"`
	Storage *StorageSettings `hcl:"storage,block"`
	Rules   *RulesConfig     `hcl:"rules,block"`
}

// ServerSettings contains server-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional" env:"KALOOKI_ADDRESS"`
	Port     int    `hcl:"port,optional" env:"KALOOKI_PORT"`
	LogLevel string `hcl:"log_level,optional" env:"KALOOKI_LOG_LEVEL"`
}

// StorageSettings configures snapshot persistence. An empty path disables
// persistence entirely.
type StorageSettings struct {
	Path              string `hcl:"path,optional" env:"KALOOKI_DB_PATH"`
	CleanupAfterHours int    `hcl:"cleanup_after_hours,optional" env:"KALOOKI_CLEANUP_AFTER_HOURS"`
}

// RulesConfig overrides the default game rules for new games. Zero fields
// keep their defaults.
type RulesConfig struct {
	NumDecks          int `hcl:"num_decks,optional"`
	Jokers            int `hcl:"jokers,optional"`
	HandSize          int `hcl:"hand_size,optional"`
	RequiredSets      int `hcl:"required_sets,optional"`
	RequiredRuns      int `hcl:"required_runs,optional"`
	RequiredMelds     int `hcl:"required_melds,optional"`
	CallWindowMs      int `hcl:"call_window_ms,optional"`
	BotTurnDelayMs    int `hcl:"bot_turn_delay_ms,optional"`
	BotCallDecisionMs int `hcl:"bot_call_decision_ms,optional"`
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Storage: &StorageSettings{
			Path:              "kalooki.db",
			CleanupAfterHours: 24,
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to the
// defaults when the file does not exist, then applies environment
// variable overrides.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}

		var loaded Config
		diags = gohcl.DecodeBody(file.Body, nil, &loaded)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
		config = &loaded
	}

	applyDefaults(config)

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Storage == nil {
		c.Storage = &StorageSettings{Path: "kalooki.db"}
	}
	if c.Storage.CleanupAfterHours == 0 {
		c.Storage.CleanupAfterHours = 24
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	rules := c.GameRules()
	if rules.NumDecks < 1 {
		return fmt.Errorf("num_decks must be at least 1")
	}
	if rules.HandSize < 1 {
		return fmt.Errorf("hand_size must be at least 1")
	}
	if rules.RequiredMelds < rules.RequiredSets+rules.RequiredRuns {
		return fmt.Errorf("required_melds must cover required_sets plus required_runs")
	}
	if rules.BotCallDecisionMs >= rules.CallWindowMs {
		return fmt.Errorf("bot_call_decision_ms must be shorter than call_window_ms")
	}
	// Two players must be dealable with a discard seed left over.
	if 2*rules.HandSize+1 > rules.TotalCards() {
		return fmt.Errorf("hand_size %d cannot be dealt from %d cards", rules.HandSize, rules.TotalCards())
	}
	return nil
}

// ListenAddress returns the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameRules resolves the rules for new games: defaults overlaid with any
// configured overrides.
func (c *Config) GameRules() game.Rules {
	rules := game.DefaultRules()
	if c.Rules == nil {
		return rules
	}

	o := c.Rules
	if o.NumDecks != 0 {
		rules.NumDecks = o.NumDecks
	}
	if o.Jokers != 0 {
		rules.Jokers = o.Jokers
	}
	if o.HandSize != 0 {
		rules.HandSize = o.HandSize
	}
	if o.RequiredSets != 0 {
		rules.RequiredSets = o.RequiredSets
	}
	if o.RequiredRuns != 0 {
		rules.RequiredRuns = o.RequiredRuns
	}
	if o.RequiredMelds != 0 {
		rules.RequiredMelds = o.RequiredMelds
	}
	if o.CallWindowMs != 0 {
		rules.CallWindowMs = o.CallWindowMs
	}
	if o.BotTurnDelayMs != 0 {
		rules.BotTurnDelayMs = o.BotTurnDelayMs
	}
	if o.BotCallDecisionMs != 0 {
		rules.BotCallDecisionMs = o.BotCallDecisionMs
	}
	return rules
}
