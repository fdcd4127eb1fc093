// Package mqtt provides MQTT client connectivity for the greenhouse core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the sole transport between the core and the greenhouse
// controllers deployed in the field. Controllers publish registration
// pins, sensor readings, device states and setting values; the core
// publishes control commands and settings pushes back.
//
//	Greenhouse Controllers ↔ MQTT Broker ↔ Greenhouse Core
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to sensor readings from all controllers
//	err = client.Subscribe(mqtt.Topics{}.AllSensorData(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish command
//	topic := mqtt.Topics{}.Command("abc-123", "watering1")
//	client.Publish(topic, []byte(`{"state":true}`), 1, false)
package mqtt
