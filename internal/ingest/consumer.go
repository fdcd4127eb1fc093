package ingest

import (
	"context"

	"github.com/agrolab/greenhouse-core/internal/infrastructure/logging"
	"github.com/agrolab/greenhouse-core/internal/infrastructure/mqtt"
)

// Subscriber is the slice of the MQTT client the consumer needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Consumer attaches the ingestion pipeline to the broker.
//
// It subscribes the four controller wildcard patterns and delegates each
// message to the Dispatcher. Handler errors are already logged and
// classified by the Dispatcher; the consumer returns them to the transport
// unchanged so its warning log stays accurate.
type Consumer struct {
	client     Subscriber
	dispatcher *Dispatcher
	qos        byte
	logger     *logging.Logger
}

// NewConsumer builds a Consumer publishing through the given client at the
// given QoS level.
func NewConsumer(client Subscriber, dispatcher *Dispatcher, qos byte, logger *logging.Logger) *Consumer {
	return &Consumer{
		client:     client,
		dispatcher: dispatcher,
		qos:        qos,
		logger:     logger.With("component", "consumer"),
	}
}

// Start subscribes all controller topic patterns. The context is captured
// for the lifetime of the subscriptions and bounds each message's handling.
func (c *Consumer) Start(ctx context.Context) error {
	topics := mqtt.Topics{}
	patterns := []string{
		topics.AllRegistrations(),
		topics.AllSensorData(),
		topics.AllDeviceStates(),
		topics.AllSettings(),
	}

	for _, pattern := range patterns {
		if err := c.client.Subscribe(pattern, c.qos, c.handle(ctx)); err != nil {
			return err
		}
		c.logger.Info("subscribed", "topic", pattern, "qos", c.qos)
	}
	return nil
}

func (c *Consumer) handle(ctx context.Context) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		return c.dispatcher.HandleMessage(ctx, topic, payload)
	}
}
