package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reQ  = regexp.MustCompile(`^[A-Za-z0-9 ._'\\-]{1,50}$`)
)

// ID validates a simple resource identifier (product/booking/notice ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true // empty query means "no free-text filter"
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

func Limit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 20
	}
	if n > 50 {
		return 50
	}
	return n
}
