package mutation

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateName trims a list or item name and rejects blank input
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// ParseQuantity converts user-facing quantity text to an integer.
// Text that is not a whole number, or is negative, is rejected instead of
// being stored as an invalid number.
func ParseQuantity(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidQuantity, text)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidQuantity, n)
	}
	return n, nil
}

// requireID rejects ids that are blank or would address another path segment
func requireID(id string) error {
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		return ErrInvalidID
	}
	return nil
}
