package marketdata

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	QuoteCurrency string `envconfig:"MARKETDATA_QUOTE" default:"USDT"`
	KlinePeriod   string `envconfig:"MARKETDATA_KLINE_PERIOD" default:"1h"`
	KlineLimit    int    `envconfig:"MARKETDATA_KLINE_LIMIT" default:"120"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
