package webhooks

import "strings"

// ParseBoolEnv interprets common truthy values (1, true, yes, on) in a
// case-insensitive manner. Used for the ENABLE_WEBHOOKS toggle.
func ParseBoolEnv(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
