package executors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RouterMode    string        `envconfig:"ROUTER_MODE" default:"paper"`
	DedupWindow   time.Duration `envconfig:"ROUTER_DEDUP_WINDOW" default:"20s"`
	OpenOrderScan int           `envconfig:"ROUTER_OPEN_ORDER_SCAN" default:"50"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
