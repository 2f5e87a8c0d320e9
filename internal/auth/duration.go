package auth

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// MaxDays bounds day counts so expiry arithmetic stays within time.Duration.
const MaxDays = 3650

// ParseDays parses a day count written as "<N>d", for example "7d".
// N must be a positive integer no larger than MaxDays.
func ParseDays(s string) (int, error) {
	raw, ok := strings.CutSuffix(strings.TrimSpace(s), "d")
	if !ok {
		return 0, fmt.Errorf("%q: expected a day count such as \"7d\"", s)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q: day count is not an integer", s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%q: day count must be positive", s)
	}
	if n > MaxDays {
		return 0, fmt.Errorf("%q: day count must be at most %d", s, MaxDays)
	}
	return n, nil
}

// ParseExpiry parses a token lifetime given either as "<N>d" or as a Go
// duration such as "12h".
func ParseExpiry(s string) (time.Duration, error) {
	if strings.HasSuffix(strings.TrimSpace(s), "d") {
		n, err := ParseDays(s)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * day, nil
	}

	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q: expected \"<N>d\" or a duration such as \"12h\"", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%q: duration must be positive", s)
	}
	return d, nil
}
