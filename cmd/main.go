package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradeconsole/src/connectors"
	"tradeconsole/src/console"
	"tradeconsole/src/dashboard"
	"tradeconsole/src/database"
	"tradeconsole/src/marketdata"
	"tradeconsole/src/repository"
	"tradeconsole/src/scanner"
	"tradeconsole/src/security"
	"tradeconsole/src/strategy"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "TradeConsole CMD"
	app.Usage = "The trade console command line interface"

	app.Commands = []cli.Command{
		consoleCMD,
		scanCMD,
		dashboardCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	consoleCMD = cli.Command{
		Name:        "console",
		Usage:       "run the live trading console",
		Action:      consoleAction,
		ArgsUsage:   "[SYMBOL ...]",
		Flags:       []cli.Flag{},
		Description: `Run the live trading console (paper or live mode)`,
	}
	scanCMD = cli.Command{
		Name:        "scan",
		Usage:       "scan a symbol universe for signal candidates",
		Action:      scanAction,
		ArgsUsage:   "[SYMBOL ...]",
		Flags:       []cli.Flag{},
		Description: `Scan a universe and rank BUY/SELL candidates`,
	}
	dashboardCMD = cli.Command{
		Name:        "dashboard",
		Usage:       "serve the web dashboard",
		Action:      dashboardAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Serve the dashboard state and control documents over HTTP`,
	}
)

// buildBroker decrypts configured credentials and wires the REST adapter.
// Credentials that fail decryption are used as-is so plain env values still
// work in development.
func buildBroker(config connectors.Config) *connectors.RESTBroker {
	if key, err := security.DecryptString(config.BrokerAPIKey); err == nil {
		config.BrokerAPIKey = key
	} else {
		logrus.Warn("broker API key is not encrypted, using raw value")
	}
	if secret, err := security.DecryptString(config.BrokerAPISecret); err == nil {
		config.BrokerAPISecret = secret
	} else {
		logrus.Warn("broker API secret is not encrypted, using raw value")
	}
	return connectors.NewRESTBroker(config)
}

func consoleAction(c *cli.Context) error {
	logrus.Info("Starting console CMD")

	config := console.GetConfig()
	dashConfig := dashboard.GetConfig()

	if err := database.InitJournalDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to open order journal")
	}
	journal := repository.NewOrderJournal()

	strat := strategy.NewSMACrossover(0, 0)
	provider := marketdata.NewKlineProvider(strat)

	var broker *connectors.RESTBroker
	brokerConfig := connectors.GetConfig()
	if brokerConfig.BrokerBaseURL != "" {
		broker = buildBroker(brokerConfig)
	}

	symbols := config.WatchlistSymbols()
	for _, arg := range c.Args() {
		symbol := strings.ToUpper(strings.TrimSpace(arg))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands := console.StartCommandReader(os.Stdin)

	live := console.New(strat.Name(), provider, brokerOrNil(broker), journal, config, dashConfig)
	if err := live.Run(ctx, symbols, commands); err != nil && err != context.Canceled {
		logrus.WithError(err).Error("Console stopped with error")
		return err
	}
	return nil
}

// brokerOrNil keeps a typed nil pointer from becoming a non-nil interface.
func brokerOrNil(broker *connectors.RESTBroker) connectors.Broker {
	if broker == nil {
		return nil
	}
	return broker
}

func scanAction(c *cli.Context) error {
	logrus.Info("Starting scan CMD")

	strat := strategy.NewSMACrossover(0, 0)
	provider := marketdata.NewKlineProvider(strat)

	universe := make([]string, 0, len(c.Args()))
	for _, arg := range c.Args() {
		symbol := strings.ToUpper(strings.TrimSpace(arg))
		if symbol != "" {
			universe = append(universe, symbol)
		}
	}
	if len(universe) == 0 {
		universe = console.GetConfig().WatchlistSymbols()
	}
	if len(universe) == 0 {
		return fmt.Errorf("no symbols to scan")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result := scanner.New(provider).Scan(ctx, universe)
	for _, candidate := range result.Buys {
		logrus.WithFields(logrus.Fields{
			"symbol": candidate.Symbol,
			"price":  candidate.Price,
			"score":  candidate.Score,
		}).Info("BUY candidate")
	}
	for _, candidate := range result.Sells {
		logrus.WithFields(logrus.Fields{
			"symbol": candidate.Symbol,
			"price":  candidate.Price,
			"score":  candidate.Score,
		}).Info("SELL candidate")
	}
	return nil
}

func dashboardAction(_ *cli.Context) error {
	logrus.Info("Starting dashboard CMD")
	dashboard.StartServer(dashboard.GetConfig())
	return nil
}
