// Package log configures Uber's Zap logging library as the backend of the
// log/slog default logger.
//
// Call Initialize() once at startup, then log with the slog.*Context
// functions so that attributes added with ContextWithAttrs are included.
//
// See the Zap docs for more details: https://pkg.go.dev/go.uber.org/zap
package log

import (
	golog "log"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/blendle/zapdriver"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// LoggingEnv is used to represent a specific configuration used by a given
// environment.
type LoggingEnv string

// String implements the Stringer interface.
func (e LoggingEnv) String() string {
	return string(e)
}

const (
	LoggingEnvDev  LoggingEnv = "dev"
	LoggingEnvProd LoggingEnv = "prod"
)

var prodLabels atomic.Bool

// Initialize sets up Zap for the given environment and makes slog.Default
// log through it. The returned logger should be synced before exiting.
//
// "prod" uses the zapdriver production configuration for StackDriver, and
// any other value uses Zap's development configuration.
func Initialize(env string) *zap.Logger {
	var err error
	var logger *zap.Logger
	switch LoggingEnv(strings.ToLower(env)) {
	case LoggingEnvProd:
		config := zapdriver.NewProductionConfig()
		// Make sure sampling is disabled.
		config.Sampling = nil
		// Build the logger and ensure we use the zapdriver Core so that labels
		// are handled correctly.
		logger, err = config.Build(zapdriver.WrapCore())
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		golog.Panic(err)
	}
	prodLabels.Store(LoggingEnv(strings.ToLower(env)) == LoggingEnvProd)

	zap.RedirectStdLog(logger)
	slog.SetDefault(slog.New(NewContextLogHandler(zapslog.NewHandler(logger.Core(), &zapslog.HandlerOptions{
		AddSource: true,
	}))))
	return logger
}

// LabelAttr causes attributes written by zapdriver to be marked as labels inside
// StackDriver when running in LoggingEnvProd. Otherwise it wraps slog.String.
func LabelAttr(key, value string) slog.Attr {
	if prodLabels.Load() {
		return slog.String("labels."+key, value)
	}
	return slog.String(key, value)
}
