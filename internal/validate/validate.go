package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'.,-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9 ()-]{8,20}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length.
// Accented letters are allowed since city and neighborhood names carry them.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// ID validates a listing identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Password enforces a length window and character classes before a login
// attempt reaches the identity store.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
