package util

import "strings"

// NormalizeUserID strips the messaging transport prefix and, when present, the
// leading country-code token from an inbound sender identifier. The result is
// the stable key used for sessions and player correlation. Normalizing an
// already-normalized id is a no-op.
func NormalizeUserID(raw, transportPrefix, countryCode string) string {
	s := strings.TrimSpace(raw)
	if transportPrefix != "" {
		s = strings.TrimPrefix(s, transportPrefix)
	}
	s = strings.TrimSpace(s)
	if countryCode != "" && strings.HasPrefix(s, countryCode) {
		s = strings.TrimPrefix(s, countryCode)
	}
	return s
}

// PhoneMatches reports whether the phone registered for a player corresponds
// to the inbound user identifier. Comparison is order-sensitive string
// containment rather than numeric equality so that formatting differences
// (leading "+", country code) do not break the match.
func PhoneMatches(registered, userID string) bool {
	registered = strings.TrimSpace(registered)
	userID = strings.TrimSpace(userID)
	if registered == "" || userID == "" {
		return false
	}
	return registered == userID || strings.Contains(userID, registered) || strings.Contains(registered, userID)
}
