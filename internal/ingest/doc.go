// Package ingest is the inbound pipeline of the core: it routes controller
// topics, decodes payloads, persists telemetry and drives alerting.
//
// One inbound MQTT message flows through four stages:
//
//	topic router -> greenhouse lookup -> payload decode -> transactional write
//
// All rows of a payload land in one SQLite transaction. After commit, sensor
// readings pass through the alert engine and at most one aggregated
// notification goes to the greenhouse owner. Malformed input of any stage is
// classified, logged and dropped; nothing is retried and no message can take
// the consumer down.
//
// The outbound direction lives here too: Publisher pushes control commands
// and settings updates back to controllers over the same transport client.
package ingest
