package driver

import "errors"

var (
	// ErrNoSink is returned by RequireSink when no Sink has been
	// attached. Tick itself runs without a sink and returns no error.
	ErrNoSink = errors.New("driver: no sink attached")
)
