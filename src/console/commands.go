package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
)

const commandHint = "Commands: /help, /buy on|off, /sell on|off, /sl <pct>, /tp <pct>, /risk <pct>, /maxpos <pct>, " +
	"/mode paper|live, /kill on|off, /hours on|off, /maxorders <n>, /add <SYM>, /remove <SYM>, /clearstate, /quit"

var commandAliases = map[string]string{
	"b":  "buy",
	"s":  "sell",
	"r":  "risk",
	"m":  "mode",
	"q":  "quit",
	"h":  "help",
	"ls": "sl",
	"pt": "tp",
	"mp": "maxpos",
	"ko": "kill",
	"mh": "hours",
	"mo": "maxorders",
	"a":  "add",
	"rm": "remove",
	"cs": "clearstate",
}

// StartCommandReader runs the input side of the command queue: a dedicated
// goroutine reads lines and pushes them onto a channel the cycle loop drains.
// The channel closes when the reader hits EOF.
func StartCommandReader(r io.Reader) <-chan string {
	commands := make(chan string, 16)
	go func() {
		defer close(commands)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			commands <- line
		}
		if err := scanner.Err(); err != nil {
			logger.WithError(err).Warn("command reader stopped")
		}
	}()
	return commands
}

// ApplyCommand handles one operator command. Returns false only for /quit.
// Case-insensitive; the leading slash is optional and short aliases apply.
func (c *Console) ApplyCommand(command string) bool {
	command = strings.TrimSpace(command)
	if command == "" {
		return true
	}
	if command == "/" {
		c.logEvent(commandHint)
		return true
	}

	tokens := strings.Fields(command)
	key := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if canonical, ok := commandAliases[key]; ok {
		key = canonical
	}
	arg := ""
	if len(tokens) > 1 {
		arg = tokens[1]
	}

	switch key {
	case "quit":
		c.logEvent("Stopping live console.")
		c.stopped = true
		return false

	case "help":
		c.logEvent(commandHint)

	case "clearstate":
		if c.stateStore.Clear() {
			c.logEvent("Saved session state cleared.")
		} else {
			c.logEvent("Failed to clear saved session state.")
		}

	case "buy", "sell":
		if arg == "" {
			c.logEvent(commandHint)
			return true
		}
		enabled := strings.EqualFold(arg, "on")
		if key == "buy" {
			c.riskConfig.BuyEnabled = enabled
			c.logEvent(fmt.Sprintf("BUY execution set to %s.", onOff(enabled)))
		} else {
			c.riskConfig.SellEnabled = enabled
			c.logEvent(fmt.Sprintf("SELL execution set to %s.", onOff(enabled)))
		}

	case "sl", "tp", "risk", "maxpos":
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			c.logEvent("Invalid percentage value.")
			return true
		}
		pct := value / 100
		switch key {
		case "sl":
			c.riskConfig.StopLossPct = floorPct(pct, 0.001)
			c.logEvent(fmt.Sprintf("Stop-loss updated to %.2f%%.", c.riskConfig.StopLossPct*100))
		case "tp":
			c.riskConfig.TakeProfitPct = floorPct(pct, 0.001)
			c.logEvent(fmt.Sprintf("Take-profit updated to %.2f%%.", c.riskConfig.TakeProfitPct*100))
		case "risk":
			c.riskConfig.RiskPerTradePct = floorPct(pct, 0.001)
			c.logEvent(fmt.Sprintf("Risk/trade updated to %.2f%%.", c.riskConfig.RiskPerTradePct*100))
		case "maxpos":
			c.riskConfig.MaxPositionPct = floorPct(pct, 0.01)
			c.logEvent(fmt.Sprintf("Max position updated to %.2f%%.", c.riskConfig.MaxPositionPct*100))
		}

	case "kill":
		enabled := strings.EqualFold(arg, "on")
		c.riskConfig.KillSwitchEnabled = enabled
		c.logEvent(fmt.Sprintf("Kill switch set to %s.", onOff(enabled)))

	case "hours":
		enabled := strings.EqualFold(arg, "on")
		c.riskConfig.MarketHoursOnly = enabled
		c.logEvent(fmt.Sprintf("Market-hours guard set to %s.", onOff(enabled)))

	case "maxorders":
		value, err := strconv.Atoi(arg)
		if err != nil {
			c.logEvent("Invalid max orders value.")
			return true
		}
		if value < 1 {
			value = 1
		}
		c.riskConfig.MaxOrdersPerDay = value
		c.logEvent(fmt.Sprintf("Max orders/day set to %d.", value))

	case "mode":
		mode := strings.ToLower(arg)
		if c.router.SetMode(mode) {
			c.logEvent(fmt.Sprintf("Execution mode set to %s.", strings.ToUpper(mode)))
		} else {
			c.logEvent("Invalid mode. Use 'paper' or 'live'.")
		}

	case "add":
		symbol := strings.ToUpper(arg)
		if symbol != "" && !contains(c.watchlist, symbol) {
			c.watchlist = append(c.watchlist, symbol)
			c.logEvent(fmt.Sprintf("Added %s to watchlist.", symbol))
		}

	case "remove":
		symbol := strings.ToUpper(arg)
		for i, existing := range c.watchlist {
			if existing == symbol {
				c.watchlist = append(c.watchlist[:i], c.watchlist[i+1:]...)
				c.logEvent(fmt.Sprintf("Removed %s from watchlist.", symbol))
				break
			}
		}

	default:
		c.logEvent("Unknown command. Type '/' to list commands.")
	}

	return true
}

func onOff(enabled bool) string {
	if enabled {
		return "ON"
	}
	return "OFF"
}

func floorPct(pct, floor float64) float64 {
	if pct < floor {
		return floor
	}
	return pct
}
