package rest

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

type loggerRef struct {
	logrus.FieldLogger
}

var current atomic.Pointer[loggerRef]

func init() {
	current.Store(&loggerRef{logrus.StandardLogger()})
}

// SetLogger replaces the logger used to report response write failures.
// It is safe to call while handlers are serving requests.
func SetLogger(l logrus.FieldLogger) {
	if l != nil {
		current.Store(&loggerRef{l})
	}
}

func logger() logrus.FieldLogger {
	return current.Load().FieldLogger
}
