package testutil

import "go.uber.org/goleak"

// GoleakOptions are the options passed to goleak.VerifyTestMain by every
// package in this module.
var GoleakOptions = []goleak.Option{
	// database/sql keeps a connection opener goroutine alive until Close,
	// which sqlmock-backed tests may race with.
	goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	// lumberjack starts its mill goroutine on first write and never stops it.
	goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
}
