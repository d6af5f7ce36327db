package utils

import "strings"

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasEmailDomain reports whether email is a non-empty mailbox at domain whose
// local part has no spaces, control characters or extra '@'.
// Both arguments are expected to be normalized.
func HasEmailDomain(email, domain string) bool {
	suffix := "@" + domain
	if !strings.HasSuffix(email, suffix) {
		return false
	}
	local := strings.TrimSuffix(email, suffix)
	if local == "" {
		return false
	}
	for _, r := range local {
		if r <= ' ' || r == 0x7f || r == '@' {
			return false
		}
	}
	return true
}

// LocalPart returns the portion of email before the '@'.
func LocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
