// REST API CLIENT FOR BROKER ORDER ENDPOINTS
// RESTY ONLY + INTERNAL RETRY
package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultRetryAttempts   = 5
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 8 * time.Second
)

// RESTBroker talks to a broker order API over signed HTTP. It satisfies the
// Broker interface and returns decoded JSON as generic values so the
// envelope helpers can normalize vendor differences.
type RESTBroker struct {
	apiKey    string
	apiSecret string
	exchange  string
	segment   string
	http      *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	if r == nil {
		return false
	}

	code := r.StatusCode()

	if code >= 500 && code <= 599 {
		return true
	}
	if code == 429 {
		return true
	}
	if code == 408 {
		return true
	}
	return false
}

func NewRESTBroker(config Config) *RESTBroker {
	retryCount := defaultRetryAttempts - 1

	baseURL := config.BrokerBaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8080"
		logger.Warnf("No broker base URL provided, using default: %s", baseURL)
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(retryCount).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp)

	return &RESTBroker{
		apiKey:    config.BrokerAPIKey,
		apiSecret: config.BrokerAPISecret,
		exchange:  config.BrokerExchange,
		segment:   config.BrokerSegment,
		http:      httpClient,
	}
}

func signRequest(path, body string, expiry int64, secret string) string {
	base := path + fmt.Sprintf("%d", expiry) + body
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

func (b *RESTBroker) doRequest(ctx context.Context, method, path string, body []byte) (interface{}, error) {
	expiry := time.Now().Add(1 * time.Minute).Unix()

	sig := signRequest(path, string(body), expiry, b.apiSecret)

	req := b.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", b.apiKey).
		SetHeader("x-request-expiry", fmt.Sprintf("%d", expiry)).
		SetHeader("x-request-signature", sig)

	if body != nil {
		req = req.SetBody(body).SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}

	raw := resp.Body()

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(raw))
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}

	return decoded, nil
}

func (b *RESTBroker) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (interface{}, error) {
	exchange := req.Exchange
	if exchange == "" {
		exchange = b.exchange
	}
	segment := req.Segment
	if segment == "" {
		segment = b.segment
	}

	body := map[string]interface{}{
		"symbol":           req.Symbol,
		"quantity":         req.Quantity,
		"price":            req.Price,
		"exchange":         exchange,
		"segment":          segment,
		"transaction_type": req.TransactionType,
		"order_type":       "MARKET",
		"product":          "INTRADAY",
		"cl_ord_id":        uuid.New().String(),
	}

	payload, _ := json.Marshal(body)
	return b.doRequest(ctx, "POST", "/orders", payload)
}

func (b *RESTBroker) GetOrderStatus(ctx context.Context, orderID string) (interface{}, error) {
	return b.doRequest(ctx, "GET", fmt.Sprintf("/orders/%s", orderID), nil)
}

func (b *RESTBroker) CancelOrder(ctx context.Context, orderID string) (interface{}, error) {
	return b.doRequest(ctx, "DELETE", fmt.Sprintf("/orders/%s", orderID), nil)
}

func (b *RESTBroker) ModifyOrder(ctx context.Context, orderID string, quantity int, price float64) (interface{}, error) {
	body := map[string]interface{}{
		"quantity": quantity,
		"price":    price,
	}

	payload, _ := json.Marshal(body)
	return b.doRequest(ctx, "PUT", fmt.Sprintf("/orders/%s", orderID), payload)
}
