package dataset

import (
	"strconv"
	"strings"

	apierrors "bikepulse/internal/errors"
)

// ParseThousands parses an integer that may carry thousands separators,
// e.g. "1,234" -> 1234
func ParseThousands(s string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, apierrors.NewParsingError("invalid integer "+strconv.Quote(s), err)
	}
	return n, nil
}

// ParseOptionalFloat parses a numeric cell; an empty cell is a missing value
func ParseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apierrors.NewParsingError("invalid number "+strconv.Quote(s), err)
	}
	return &v, nil
}
