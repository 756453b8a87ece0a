package log_test

import (
	"os"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/tallyproof/log"
)

func TestInitLevels(t *testing.T) {
	c := qt.New(t)

	for _, level := range []string{
		log.LogLevelDebug,
		log.LogLevelInfo,
		log.LogLevelWarn,
		log.LogLevelError,
	} {
		log.Init(level, "stderr", nil)
		c.Assert(log.Level(), qt.Equals, level)
	}

	c.Assert(func() { log.Init("bogus", "stderr", nil) }, qt.PanicMatches, `invalid log level: .*`)
}

func TestLogToFile(t *testing.T) {
	c := qt.New(t)

	logFile := c.TempDir() + "/out.log"
	log.Init(log.LogLevelInfo, logFile, nil)
	log.Infow("hello from the log test", "key", "value")
	log.Init(log.LogLevelError, "stderr", nil)

	data, err := os.ReadFile(logFile)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Contains, "hello from the log test")
}
