// Package obslog is the logging seam every csvjson component writes through.
//
// It wraps a single *logrus.Logger so call sites attach the same field
// vocabulary (component, op, delimiter, engine, rows, ...) the way the
// teacher's streamloader wrapped every returned error with fmt.Errorf context.
package obslog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu  sync.RWMutex
	log = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}

// L returns the process-wide logger. Safe for concurrent use.
func L() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger replaces the process-wide logger, e.g. so a host application can
// route csvjson's diagnostics into its own logrus instance/formatter.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Component returns a logger pre-tagged with a component field, the unit
// every package in this module uses ("delim", "fastpath", "codec", "hooks",
// "plugin", "stream").
func Component(name string) *logrus.Entry {
	return L().WithField("component", name)
}
