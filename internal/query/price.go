package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPrice marks a numeric literal that cannot be normalized.
var ErrMalformedPrice = errors.New("MALFORMED_PRICE")

// NormalizePrice parses a heterogeneous price literal into whole rupees.
// Accepted forms: plain digits ("6500000"), western grouping ("6,500,000"),
// and a case-insensitive "Rs."/"Rs" currency prefix with optional space
// ("Rs.6500000", "Rs 6,500,000"). A fractional part is truncated toward
// zero; sub-rupee amounts carry no meaning in listing prices.
func NormalizePrice(text string) (int64, error) {
	s := strings.TrimSpace(text)

	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "rs."):
		s = s[3:]
	case strings.HasPrefix(lower, "rs"):
		s = s[2:]
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")

	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		if !allDigits(s[dot+1:]) {
			return 0, fmt.Errorf("%w: %q", ErrMalformedPrice, text)
		}
		s = s[:dot]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPrice, text)
	}
	return n, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
