package connectors

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	BrokerBaseURL   string `envconfig:"BROKER_BASE_URL" default:""`
	BrokerAPIKey    string `envconfig:"BROKER_API_KEY" default:""`
	BrokerAPISecret string `envconfig:"BROKER_API_SECRET" default:""`
	BrokerExchange  string `envconfig:"BROKER_EXCHANGE" default:"NSE"`
	BrokerSegment   string `envconfig:"BROKER_SEGMENT" default:"EQ"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
