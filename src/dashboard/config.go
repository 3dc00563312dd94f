package dashboard

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port         string        `envconfig:"DASHBOARD_PORT" default:"9898"`
	StateFile    string        `envconfig:"DASHBOARD_STATE_FILE" default:"data/runtime/dashboard_state.json"`
	ControlsFile string        `envconfig:"DASHBOARD_CONTROLS_FILE" default:"data/runtime/dashboard_controls.json"`
	PushInterval time.Duration `envconfig:"DASHBOARD_PUSH_INTERVAL" default:"2s"`
}

func GetConfig() *Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return &config
}
