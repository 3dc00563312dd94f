package risk

// Config is the mutable runtime risk configuration. One instance exists per
// session; all mutation goes through the console command handler.
type Config struct {
	InitialCapital    float64
	MaxDailyLossPct   float64
	MaxPositionPct    float64
	RiskPerTradePct   float64
	StopLossPct       float64
	TakeProfitPct     float64
	BuyEnabled        bool
	SellEnabled       bool
	KillSwitchEnabled bool
	MarketHoursOnly   bool
	MaxOrdersPerDay   int
}

// DefaultConfig returns the standard risk profile for the given capital.
func DefaultConfig(initialCapital float64) *Config {
	return &Config{
		InitialCapital:    initialCapital,
		MaxDailyLossPct:   0.03,
		MaxPositionPct:    0.10,
		RiskPerTradePct:   0.01,
		StopLossPct:       0.02,
		TakeProfitPct:     0.04,
		BuyEnabled:        true,
		SellEnabled:       true,
		KillSwitchEnabled: false,
		MarketHoursOnly:   true,
		MaxOrdersPerDay:   40,
	}
}
