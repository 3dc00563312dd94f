package connectors

import (
	"context"
	"fmt"
	"sync"
)

// SimBroker is an in-memory broker used by tests and dry runs. Orders are
// acknowledged immediately with a SENT status and can be flipped through
// SetStatus to exercise reconciliation paths.
type SimBroker struct {
	mu       sync.Mutex
	seq      int
	statuses map[string]string
	FailNext bool
}

func NewSimBroker() *SimBroker {
	return &SimBroker{statuses: map[string]string{}}
}

func (s *SimBroker) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext {
		s.FailNext = false
		return nil, fmt.Errorf("simulated broker failure")
	}

	s.seq++
	orderID := fmt.Sprintf("SIM-%06d", s.seq)
	s.statuses[orderID] = "SENT"

	return map[string]interface{}{
		"data": map[string]interface{}{
			"order_id": orderID,
			"status":   "SENT",
		},
	}, nil
}

func (s *SimBroker) GetOrderStatus(ctx context.Context, orderID string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[orderID]
	if !ok {
		return nil, fmt.Errorf("unknown order id %q", orderID)
	}
	return map[string]interface{}{"order_id": orderID, "status": status}, nil
}

func (s *SimBroker) CancelOrder(ctx context.Context, orderID string) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.statuses[orderID]; !ok {
		return nil, fmt.Errorf("unknown order id %q", orderID)
	}
	s.statuses[orderID] = "CANCELLED"
	return map[string]interface{}{"order_id": orderID, "status": "CANCELLED"}, nil
}

func (s *SimBroker) ModifyOrder(ctx context.Context, orderID string, quantity int, price float64) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.statuses[orderID]; !ok {
		return nil, fmt.Errorf("unknown order id %q", orderID)
	}
	return map[string]interface{}{"order_id": orderID, "status": s.statuses[orderID]}, nil
}

// SetStatus overrides the stored status for a known order id.
func (s *SimBroker) SetStatus(orderID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[orderID] = status
}
