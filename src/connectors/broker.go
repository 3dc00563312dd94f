package connectors

import (
	"context"
	"strconv"
	"strings"
)

// PlaceOrderRequest carries everything a broker adapter needs to submit an
// order. Exchange and segment are pass-through routing hints.
type PlaceOrderRequest struct {
	Symbol          string
	Quantity        int
	Price           float64
	Exchange        string
	Segment         string
	TransactionType string
}

// Broker is the capability interface the execution router depends on. One
// implementation exists per broker; adapters may return arbitrarily nested
// response shapes, which the envelope helpers below normalize.
type Broker interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (interface{}, error)
	GetOrderStatus(ctx context.Context, orderID string) (interface{}, error)
	CancelOrder(ctx context.Context, orderID string) (interface{}, error)
	ModifyOrder(ctx context.Context, orderID string, quantity int, price float64) (interface{}, error)
}

var orderIDKeys = []string{"broker_order_id", "order_id", "id"}
var statusKeys = []string{"order_status", "status", "state"}

// ExtractOrderID pulls a broker order id out of an opaque response by
// recursive search over nested maps and lists. Returns "" when nothing
// matches.
func ExtractOrderID(response interface{}) string {
	return extractByKeys(response, orderIDKeys, false)
}

// ExtractStatus pulls an order status out of an opaque response, normalized
// to uppercase.
func ExtractStatus(response interface{}) string {
	return extractByKeys(response, statusKeys, true)
}

func extractByKeys(response interface{}, keys []string, upper bool) string {
	switch value := response.(type) {
	case nil:
		return ""
	case map[string]interface{}:
		for _, key := range keys {
			if raw, ok := value[key]; ok {
				if rendered := renderScalar(raw); rendered != "" {
					if upper {
						return strings.ToUpper(rendered)
					}
					return rendered
				}
			}
		}
		for _, nested := range value {
			if found := extractByKeys(nested, keys, upper); found != "" {
				return found
			}
		}
	case []interface{}:
		for _, item := range value {
			if found := extractByKeys(item, keys, upper); found != "" {
				return found
			}
		}
	}
	return ""
}

func renderScalar(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
