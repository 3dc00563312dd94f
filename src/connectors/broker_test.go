package connectors_test

import (
	"context"
	"testing"

	"tradeconsole/src/connectors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractOrderID(t *testing.T) {
	cases := []struct {
		name     string
		response interface{}
		want     string
	}{
		{
			name:     "flat map",
			response: map[string]interface{}{"order_id": "A-100"},
			want:     "A-100",
		},
		{
			name: "nested under data",
			response: map[string]interface{}{
				"status": "success",
				"data":   map[string]interface{}{"order_id": "B-200"},
			},
			want: "B-200",
		},
		{
			name: "list of candidates",
			response: []interface{}{
				map[string]interface{}{"note": "ack"},
				map[string]interface{}{"id": "C-300"},
			},
			want: "C-300",
		},
		{
			name:     "numeric id rendered as string",
			response: map[string]interface{}{"id": float64(12345)},
			want:     "12345",
		},
		{
			name: "preferred key wins over fallback",
			response: map[string]interface{}{
				"order_id": "primary",
				"id":       "fallback",
			},
			want: "primary",
		},
		{
			name:     "nothing matches",
			response: map[string]interface{}{"message": "accepted"},
			want:     "",
		},
		{
			name:     "nil response",
			response: nil,
			want:     "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, connectors.ExtractOrderID(tc.response))
		})
	}
}

func TestExtractStatus(t *testing.T) {
	resp := map[string]interface{}{
		"data": map[string]interface{}{
			"order": map[string]interface{}{"state": "complete"},
		},
	}
	assert.Equal(t, "COMPLETE", connectors.ExtractStatus(resp))

	flat := map[string]interface{}{"order_status": "Sent"}
	assert.Equal(t, "SENT", connectors.ExtractStatus(flat))

	assert.Equal(t, "", connectors.ExtractStatus(map[string]interface{}{"ok": true}))
}

func TestSimBrokerLifecycle(t *testing.T) {
	ctx := context.Background()
	broker := connectors.NewSimBroker()

	resp, err := broker.PlaceOrder(ctx, connectors.PlaceOrderRequest{
		Symbol:          "RELIANCE",
		Quantity:        10,
		Price:           2500,
		TransactionType: "BUY",
	})
	require.NoError(t, err)

	orderID := connectors.ExtractOrderID(resp)
	require.NotEmpty(t, orderID)
	assert.Equal(t, "SENT", connectors.ExtractStatus(resp))

	broker.SetStatus(orderID, "COMPLETE")
	statusResp, err := broker.GetOrderStatus(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETE", connectors.ExtractStatus(statusResp))

	cancelResp, err := broker.CancelOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", connectors.ExtractStatus(cancelResp))

	_, err = broker.GetOrderStatus(ctx, "missing")
	assert.Error(t, err)
}

func TestSimBrokerFailNext(t *testing.T) {
	broker := connectors.NewSimBroker()
	broker.FailNext = true

	_, err := broker.PlaceOrder(context.Background(), connectors.PlaceOrderRequest{Symbol: "TCS", Quantity: 1})
	require.Error(t, err)

	_, err = broker.PlaceOrder(context.Background(), connectors.PlaceOrderRequest{Symbol: "TCS", Quantity: 1})
	require.NoError(t, err)
}
