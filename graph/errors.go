package graph

import "fmt"

// fatalError marks a panic value as an internal invariant violation rather
// than an ordinary runtime crash, so callers that choose to recover (tests,
// primarily) can distinguish it from a real bug elsewhere.
type fatalError struct{ msg string }

func (e fatalError) Error() string { return e.msg }

func fatalf(format string, args ...any) error {
	return fatalError{fmt.Sprintf(format, args...)}
}
