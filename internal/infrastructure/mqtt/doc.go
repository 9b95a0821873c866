// Package mqtt provides MQTT client connectivity for Gray Logic Telemetry.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Topic subscriptions with wildcard support, restored on reconnect
//   - Last Will and Testament (LWT) for offline detection
//   - Reading topic builders and parsing
//
// # Architecture
//
// Field sensors and gateways publish measurements to the broker. The
// ingest listener subscribes to the reading topics and forwards each
// message to the reading coordinator.
//
//	Sensors → MQTT Broker → mqtt.Client → ingest.Listener → reading.Coordinator
//
// # Security Considerations
//
//   - Enable TLS outside the local network (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllReadings(), 1, listener.Handle)
package mqtt
