// Package mqtt provides MQTT client connectivity for hookbot.
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
// hookbot uses MQTT as the message bus between the bot and the chat
// gateway. The gateway sits on the IRC side and bridges channel traffic
// onto hookbot/chat/... topics; the bot publishes replies on the same
// topics for the gateway to relay.
//
//	IRC network ↔ Chat gateway ↔ MQTT Broker ↔ hookbot
//
// Channel names are sanitised before use as topic levels because IRC
// names contain characters MQTT reserves ("#bots" holds a wildcard).
// The real channel name always travels in the message payload.
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
//	// Subscribe to chat traffic in every channel
//	err = client.Subscribe(mqtt.Topics{}.AllChannelMessages(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Say something in a channel
//	topic := mqtt.Topics{}.ChannelMessage("#bots")
//	client.Publish(topic, []byte(`{"channel":"#bots","nick":"hookbot","text":"hi"}`), 1, false)
package mqtt
