package locktime

import (
	"strconv"
	"strings"
)

const (
	// anytimeText is the text form of a lock that doesn't lock at all.
	anytimeText = "none"

	timePrefix   = "time("
	heightPrefix = "height("
)

// parseLock parses "0", "none" or "<prefix>N)" case-insensitively. The
// returned bool is false for the anytime forms.
func parseLock(s, prefix string) (uint32, bool, error) {
	lower := strings.ToLower(s)
	if lower == "0" || lower == anytimeText {
		return 0, false, nil
	}

	if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, ")") {
		return 0, false, &ParseError{
			Kind:  InvalidDescriptor,
			Input: s,
		}
	}

	numStr := strings.TrimSuffix(strings.TrimPrefix(lower, prefix), ")")
	num, err := strconv.ParseUint(numStr, 10, 32)
	if err != nil {
		return 0, false, &ParseError{
			Kind:  InvalidInteger,
			Input: s,
			Err:   err,
		}
	}

	return uint32(num), true, nil
}
