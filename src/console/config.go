package console

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Watchlist        string  `envconfig:"CONSOLE_WATCHLIST" default:""`
	Mode             string  `envconfig:"CONSOLE_MODE" default:"paper"`
	RefreshSeconds   int     `envconfig:"CONSOLE_REFRESH_SECONDS" default:"15"`
	InitialCapital   float64 `envconfig:"CONSOLE_INITIAL_CAPITAL" default:"100000"`
	AutoResume       bool    `envconfig:"CONSOLE_AUTO_RESUME" default:"true"`
	SessionStateFile string  `envconfig:"CONSOLE_SESSION_STATE_FILE" default:"data/runtime/session_state.json"`
	MetricsFile      string  `envconfig:"CONSOLE_METRICS_FILE" default:"data/runtime/metrics.json"`
	KillSwitch       bool    `envconfig:"LIVE_KILL_SWITCH" default:"false"`
	MarketHoursOnly  bool    `envconfig:"LIVE_MARKET_HOURS_ONLY" default:"true"`
	MaxOrdersPerDay  int     `envconfig:"LIVE_MAX_ORDERS_PER_DAY" default:"40"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}

// WatchlistSymbols splits and uppercases the configured watchlist.
func (c *Config) WatchlistSymbols() []string {
	var symbols []string
	for _, raw := range strings.Split(c.Watchlist, ",") {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	return symbols
}
