package rabbit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"bottle-order-tracking/internal/dto"
	"bottle-order-tracking/internal/service"
)

type PlaceOrderConsumer struct {
	Service *service.OrderStatusService
	Log     *zap.SugaredLogger
}

func NewPlaceOrderConsumer(s *service.OrderStatusService, log *zap.SugaredLogger) *PlaceOrderConsumer {
	return &PlaceOrderConsumer{Service: s, Log: log}
}

// PlacedOrderMessage is the order-service event on the order_placed exchange.
// Details may be absent on older producers; the document is created either way.
type PlacedOrderMessage struct {
	CorrelationID string `json:"correlation_id"`
	Message       struct {
		OrderID string         `json:"orderId"`
		UserID  string         `json:"userId"`
		Details dto.BottleSpec `json:"details"`
	} `json:"message"`
}

func (c *PlaceOrderConsumer) Handle(msg []byte) error {
	var event PlacedOrderMessage
	if err := json.Unmarshal(msg, &event); err != nil {
		c.Log.Errorw("cannot parse order_placed message", "error", err)
		return err
	}

	_, err := c.Service.InitOrder(
		context.Background(),
		event.Message.OrderID,
		event.Message.UserID,
		event.Message.Details,
	)
	if err != nil {
		if err == service.ErrOrderAlreadyExists {
			// Fanout redelivery; the document is already there.
			return nil
		}
		c.Log.Errorw("cannot create tracking document", "orderId", event.Message.OrderID, "error", err)
		return err
	}

	c.Log.Infow("tracking document created", "orderId", event.Message.OrderID)
	return nil
}
