package market

import (
	"errors"
	"fmt"
)

// ParseError marks a completion response the estimator could not turn into a
// sizing result. It is deterministic for a given response, so callers must
// not retry it; only transport failures are retryable.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("market: unparseable sizing response: %s", e.Reason)
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func parseErrorf(raw, format string, args ...any) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Raw: raw}
}
