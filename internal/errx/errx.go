// Package errx attaches context to sentinel errors while keeping them
// matchable with errors.Is.
package errx

import "fmt"

// Wrap joins a sentinel with the underlying cause as "sentinel: cause".
// Both remain reachable through errors.Is and errors.As.
func Wrap(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// With appends a formatted suffix to a sentinel. The format is appended
// verbatim, so callers supply their own separator (" %q", ": %w").
func With(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w"+format, append([]any{sentinel}, args...)...)
}
