package instrumentation

import "strings"

// ExtractUserDomain reduces a user identifier to its domain so it can be used
// as a low-cardinality value. Graph user ids may also be object GUIDs, which
// have no domain and map to "unknown".
//
// Example:
//
//	ExtractUserDomain("jane@example.com")                      // "example.com"
//	ExtractUserDomain("3f2504e0-4f89-11d3-9a0c-0305e82c3301")  // "unknown"
//	ExtractUserDomain("")                                      // "unknown"
func ExtractUserDomain(userID string) string {
	if userID == "" {
		return "unknown"
	}

	parts := strings.Split(userID, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}
