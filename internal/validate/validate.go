package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"andonation/internal/domain"
)

const DateLayout = "2006-01-02"

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// EmailDomain reports whether the email belongs to one of the allowed domains.
// An empty allow list admits every domain.
func EmailDomain(email string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	dom := strings.ToLower(email[at+1:])
	for _, a := range allowed {
		if strings.ToLower(strings.TrimSpace(a)) == dom {
			return true
		}
	}
	return false
}

// ID validates a simple resource identifier (user/campaign ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates an optional person name; empty is allowed.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 50
}

func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

func Description(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 1000
}

// Amount parses a positive goal amount.
func Amount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 || v > 1e9 {
		return 0, false
	}
	return v, true
}

// Deadline parses a YYYY-MM-DD date that is not before today.
func Deadline(s string, today time.Time) (string, bool) {
	s = strings.TrimSpace(s)
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", false
	}
	if d.Format(DateLayout) < today.Format(DateLayout) {
		return "", false
	}
	return s, true
}

func Role(s string) (domain.Role, bool) {
	return domain.ParseRole(s)
}

// Password enforces a simple length window for login checks.
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
