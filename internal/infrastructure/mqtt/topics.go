package mqtt

import "fmt"

// Topic prefixes for the greenhouse MQTT scheme.
//
// Controller topics use the flat scheme: m/{guid}/{suffix}
// where {guid} identifies the greenhouse controller. This matches the
// firmware shipped on the field units and cannot change server-side.
const (
	// TopicPrefixController is the base for all controller topics.
	// Flat scheme: m/{guid}/{suffix}
	TopicPrefixController = "m"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "greenhouse/system"
)

// Controller topic suffixes.
const (
	// suffixRegistration carries the controller's registration pin.
	suffixRegistration = "reg"

	// suffixSensorData carries current sensor readings.
	suffixSensorData = "d/cur"

	// suffixDeviceState carries current device on/off states.
	suffixDeviceState = "st/cur"

	// suffixSettings carries current setting values.
	suffixSettings = "s/cur"

	// suffixSettingsUpdate is the outbound settings push topic.
	suffixSettingsUpdate = "s/update"
)

// Topics provides builders for greenhouse MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	regTopic := topics.Registration("abc-123")
//	// Returns: "m/abc-123/reg"
type Topics struct{}

// =============================================================================
// Controller Topics
// =============================================================================

// Registration returns the topic a controller publishes its pin on.
//
// Example: m/abc-123/reg
func (Topics) Registration(guid string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixController, guid, suffixRegistration)
}

// SensorData returns the topic for current sensor readings from a controller.
//
// Example: m/abc-123/d/cur
func (Topics) SensorData(guid string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixController, guid, suffixSensorData)
}

// DeviceState returns the topic for current device states from a controller.
//
// Example: m/abc-123/st/cur
func (Topics) DeviceState(guid string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixController, guid, suffixDeviceState)
}

// Settings returns the topic for current setting values from a controller.
//
// Example: m/abc-123/s/cur
func (Topics) Settings(guid string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixController, guid, suffixSettings)
}

// Command returns the topic for a control command to a controller.
// The control segment names the actuator being driven.
//
// Example: m/abc-123/c/watering1
func (Topics) Command(guid, control string) string {
	return fmt.Sprintf("%s/%s/c/%s", TopicPrefixController, guid, control)
}

// SettingsUpdate returns the topic for pushing new setting values to a controller.
//
// Example: m/abc-123/s/update
func (Topics) SettingsUpdate(guid string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixController, guid, suffixSettingsUpdate)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic used for LWT and
// online/offline announcements.
//
// Example: greenhouse/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllRegistrations returns a pattern matching registration messages
// from every controller.
//
// Pattern: m/+/reg
func (Topics) AllRegistrations() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixController, suffixRegistration)
}

// AllSensorData returns a pattern matching sensor readings from every controller.
//
// Pattern: m/+/d/cur
func (Topics) AllSensorData() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixController, suffixSensorData)
}

// AllDeviceStates returns a pattern matching device states from every controller.
//
// Pattern: m/+/st/cur
func (Topics) AllDeviceStates() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixController, suffixDeviceState)
}

// AllSettings returns a pattern matching setting values from every controller.
//
// Pattern: m/+/s/cur
func (Topics) AllSettings() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixController, suffixSettings)
}

// AllControllerTopics returns a pattern matching all controller traffic.
// Use with caution - this receives ALL traffic including outbound commands.
//
// Pattern: m/#
func (Topics) AllControllerTopics() string {
	return TopicPrefixController + "/#"
}
