package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradeconsole/src/database"
	"tradeconsole/src/model"
)

// OrderJournal handles the durable order ledger. Inserts are synchronous and
// must succeed before the router returns; an insert failure propagates so the
// caller knows the order's fate is unrecorded.
type OrderJournal struct {
	db *gorm.DB
}

// NewOrderJournal creates a journal over the shared journal database.
func NewOrderJournal() *OrderJournal {
	logger.WithField("component", "OrderJournal").
		Info("Creating new OrderJournal with JournalDB")

	return &OrderJournal{db: database.JournalDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (j *OrderJournal) WithDB(db *gorm.DB) *OrderJournal {
	return &OrderJournal{db: db}
}

// RecordOrder inserts one journal row and returns its id. Symbol, side,
// status and mode are normalized before hitting the table.
func (j *OrderJournal) RecordOrder(ctx context.Context, order *model.Order) (uint, error) {
	order.Symbol = strings.ToUpper(order.Symbol)
	order.Side = strings.ToUpper(order.Side)
	order.Status = strings.ToUpper(order.Status)
	order.Mode = strings.ToLower(order.Mode)
	if order.BrokerPayload == "" {
		order.BrokerPayload = "{}"
	}

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderJournal",
		"op":     "RecordOrder",
		"symbol": order.Symbol,
		"side":   order.Side,
		"qty":    order.Quantity,
		"status": order.Status,
	}).Debug("Recording order")

	if err := j.db.WithContext(ctx).Create(order).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderJournal",
			"op":   "RecordOrder",
		}).WithError(err).Error("Failed to record order")

		return 0, err
	}

	return order.ID, nil
}

// UpdateOrder revises status, reason and broker payload in place. Other
// columns are immutable after insert.
func (j *OrderJournal) UpdateOrder(ctx context.Context, journalID uint, status, reason string, brokerPayload map[string]interface{}) (bool, error) {
	payload := "{}"
	if brokerPayload != nil {
		if encoded, err := json.Marshal(brokerPayload); err == nil {
			payload = string(encoded)
		}
	}

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderJournal",
		"op":     "UpdateOrder",
		"id":     journalID,
		"status": status,
	}).Debug("Updating order")

	result := j.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", journalID).
		Updates(map[string]interface{}{
			"status":         strings.ToUpper(status),
			"reason":         reason,
			"broker_payload": payload,
			"updated_at":     time.Now().UTC(),
		})

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderJournal",
			"op":   "UpdateOrder",
			"id":   journalID,
		}).WithError(result.Error).Error("Failed to update order")

		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// GetOpenLiveOrders returns live orders still in a non-terminal state,
// newest first, bounded.
func (j *OrderJournal) GetOpenLiveOrders(ctx context.Context, limit int) ([]model.Order, error) {
	if limit <= 0 {
		limit = 200
	}

	var orders []model.Order
	err := j.db.WithContext(ctx).
		Where("mode = ? AND status IN ?", model.ModeLive, model.OpenLiveStatuses).
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "OrderJournal",
			"op":    "GetOpenLiveOrders",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch open live orders")

		return nil, err
	}

	return orders, nil
}

// GetSessionSummary counts and samples orders created since the given time,
// split into open vs. closed by terminal status.
func (j *OrderJournal) GetSessionSummary(ctx context.Context, since time.Time, limit int) (*model.SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	summary := &model.SessionSummary{
		OpenRows:   []model.OrderSample{},
		ClosedRows: []model.OrderSample{},
	}

	var total, open, closed int64
	base := func() *gorm.DB {
		return j.db.WithContext(ctx).Model(&model.Order{}).Where("created_at >= ?", since)
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status NOT IN ?", model.TerminalStatuses).Count(&open).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status IN ?", model.TerminalStatuses).Count(&closed).Error; err != nil {
		return nil, err
	}

	summary.TotalOrders = int(total)
	summary.OpenOrders = int(open)
	summary.ClosedOrders = int(closed)

	var openRows, closedRows []model.Order
	if err := base().Where("status NOT IN ?", model.TerminalStatuses).
		Order("id DESC").Limit(limit).Find(&openRows).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status IN ?", model.TerminalStatuses).
		Order("id DESC").Limit(limit).Find(&closedRows).Error; err != nil {
		return nil, err
	}

	summary.OpenRows = toSamples(openRows)
	summary.ClosedRows = toSamples(closedRows)

	logger.WithFields(map[string]interface{}{
		"repo":   "OrderJournal",
		"op":     "GetSessionSummary",
		"total":  summary.TotalOrders,
		"open":   summary.OpenOrders,
		"closed": summary.ClosedOrders,
	}).Debug("Session summary computed")

	return summary, nil
}

func toSamples(orders []model.Order) []model.OrderSample {
	samples := make([]model.OrderSample, 0, len(orders))
	for _, order := range orders {
		samples = append(samples, model.OrderSample{
			ID:        order.ID,
			CreatedAt: order.CreatedAt,
			Symbol:    order.Symbol,
			Side:      order.Side,
			Quantity:  order.Quantity,
			Price:     order.Price,
			Status:    order.Status,
			Mode:      order.Mode,
		})
	}
	return samples
}
