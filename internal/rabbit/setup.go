// setup.go
package rabbit

import (
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bottle-order-tracking/internal/service"
)

func SetupConsumers(ch *amqp091.Channel, svc *service.OrderStatusService, log *zap.SugaredLogger) {
	consumer := NewPlaceOrderConsumer(svc, log)

	q, err := ch.QueueDeclare(
		"bottle_order_tracking_orders", // queue owned by this service
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Errorw("cannot declare queue", "error", err)
		return
	}

	err = ch.QueueBind(
		q.Name,
		"", // fanout ignores the routing key
		"order_placed",
		false,
		nil,
	)
	if err != nil {
		log.Errorw("cannot bind exchange", "error", err)
		return
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		log.Errorw("cannot consume queue", "error", err)
		return
	}

	go func() {
		for m := range msgs {
			consumer.Handle(m.Body)
		}
	}()

	log.Infow("subscribed to exchange", "exchange", "order_placed")
}
