package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is usable before InitLogger runs; InitLogger only reconfigures it.
var Log = logrus.New()

// InitLogger configures Log and the package-level logrus logger used by the repositories
// and services.
func InitLogger(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	for _, l := range []*logrus.Logger{Log, logrus.StandardLogger()} {
		// Output to stdout instead of the default stderr
		l.SetOutput(os.Stdout)
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(lvl)
	}
	if err != nil && level != "" {
		Log.WithField("level", level).Warn("Unknown log level, using info")
	}
}
