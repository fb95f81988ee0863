package logger

import (
	"fmt"
	"log"
	"os"
)

// New returns a stdlib logger for code that runs before slog is configured.
// Output goes to stderr so it never mixes with the run summary on stdout.
func New(component string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", component)
	return log.New(os.Stderr, prefix, log.LstdFlags|log.Lmsgprefix)
}
