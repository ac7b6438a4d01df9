package crawler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTarget is returned before spawning anything when neither an
	// item id nor an item name was supplied.
	ErrInvalidTarget = errors.New("crawler: target requires an item id or name")

	// ErrTimeout is returned when the crawler process was killed at the deadline.
	ErrTimeout = errors.New("crawler: process timed out")

	// ErrSpawn is returned when the process could not be started at all,
	// e.g. a missing interpreter.
	ErrSpawn = errors.New("crawler: process failed to start")
)

// ExitError reports a crawler process that ran to completion with a non-zero
// exit code. Output carries the combined stdout/stderr text for diagnostics;
// it is never parsed for state.
type ExitError struct {
	Code   int
	Output string
}

func (e *ExitError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("crawler: exit code %d", e.Code)
	}
	return fmt.Sprintf("crawler: exit code %d: %s", e.Code, out)
}
