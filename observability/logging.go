package observability

import (
	"os"

	"github.com/signalwave/rfbench/log"
)

// ConfigureLogging maps a CLI-friendly level name onto the log package's
// SetLevel/SetSink calls, always writing to stderr (spec §11's ambient
// stack).
func ConfigureLogging(levelName string) error {
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return err
	}
	log.SetSink(os.Stderr)
	log.SetLevel(level)
	return nil
}
