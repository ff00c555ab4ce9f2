package logging

import (
	"github.com/pion/logging"
)

var loggerFactory = logging.NewDefaultLoggerFactory()

// NewLogger returns a leveled logger for scope. Levels are controlled with the
// PION_LOG_* environment variables, e.g. PION_LOG_DEBUG=side/storage.
func NewLogger(scope string) logging.LeveledLogger {
	return loggerFactory.NewLogger(scope)
}
