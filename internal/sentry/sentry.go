package sentry

import (
	"os"
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"
)

// DSNEnv names the environment variable holding the Sentry DSN. There is no
// baked-in project; crash reporting stays off until an operator provides one.
const DSNEnv = "LAYERSTACK_SENTRY_DSN"

const flushTimeout = 2 * time.Second

// dsn is a package-level var so tests can override it.
var dsn = os.Getenv(DSNEnv)

// enabled tracks whether sentry was successfully initialized.
var enabled bool

// Init initializes the Sentry SDK. When telemetryEnabled is false or dsn is
// empty, it no-ops silently and every other function in this package becomes
// a safe no-op.
func Init(version string, telemetryEnabled bool) error {
	if !telemetryEnabled || dsn == "" {
		enabled = false
		return nil
	}

	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "layerstack@" + version,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("version", version)
	})

	enabled = true
	return nil
}

// IsEnabled returns whether sentry is active.
func IsEnabled() bool {
	return enabled
}

// Flush waits up to 2 seconds for buffered events to be sent.
func Flush() {
	if !enabled {
		return
	}
	gosentry.Flush(flushTimeout)
}

// RecoverPanic captures a panic to Sentry, flushes, then re-panics.
// Usage: defer sentry.RecoverPanic()
func RecoverPanic() {
	if !enabled {
		return
	}
	if err := recover(); err != nil {
		gosentry.CurrentHub().Recover(err)
		gosentry.Flush(flushTimeout)
		panic(err)
	}
}

// SetContext tags the current scope with the run mode and the source driving
// the layer stack (a scenario file, or "demo").
func SetContext(mode, source string) {
	if !enabled {
		return
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("mode", mode)
		scope.SetContext("layerstack", map[string]interface{}{
			"mode":   mode,
			"source": source,
		})
	})
}

// CaptureCloseError reports a failed escape callback with the layer it
// belonged to.
func CaptureCloseError(err error, layerID, kind string) {
	if !enabled || err == nil {
		return
	}
	gosentry.WithScope(func(scope *gosentry.Scope) {
		scope.SetTag("layer_kind", kind)
		scope.SetExtra("layer_id", layerID)
		gosentry.CaptureException(err)
	})
}
