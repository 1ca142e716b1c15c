// Package monitoring provides the pipeline's diagnostic logger.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Stage logs the start of a pipeline stage and returns a function that logs
// its completion with the elapsed time. Intended usage:
//
//	defer monitoring.Stage("stack")()
func Stage(name string) func() {
	start := time.Now()
	Logf("stage %s: started", name)
	return func() {
		Logf("stage %s: done in %s", name, time.Since(start).Round(time.Millisecond))
	}
}
