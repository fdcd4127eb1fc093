// Package notify delivers alert notifications to greenhouse owners.
//
// The core hands a title and body to a Dispatcher; concrete dispatchers
// push to a mobile gateway or send email over SMTP. Multi fans one
// notification out to every target registered for the owning user and
// tolerates partial failure.
//
// Dispatchers perform exactly one delivery attempt. Retries, queueing and
// delivery receipts belong to the transports behind them, not to the core.
// Every attempt is recorded in the notification log regardless of outcome.
package notify
