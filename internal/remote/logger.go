package remote

import (
	"fmt"

	"github.com/rs/zerolog"
)

// restyLogger routes resty's internal messages (debug dumps, retry warnings)
// through zerolog so they share the service's log format.
type restyLogger struct {
	lg zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.lg.Error().Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.lg.Warn().Msg(fmt.Sprintf(format, v...))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.lg.Debug().Msg(fmt.Sprintf(format, v...))
}
