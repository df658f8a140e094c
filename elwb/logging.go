package elwb

import (
	"os"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type used throughout this module. It is a
// type alias for logiface's Logger over stumpy's event type, so only a
// logiface logger built on stumpy events fits it; zerolog- or logrus-backed
// logiface loggers have a different type.
type Logger = logiface.Logger[*stumpy.Event]

// NewDefaultLogger returns a Logger writing newline-delimited JSON to
// os.Stderr via stumpy, logiface's zero-allocation-oriented writer. This
// mirrors the teacher's package-level default logger, generalized to an
// explicit constructor rather than a package global, since multiple engine
// instances (host + several sources) commonly run in the same test binary.
func NewDefaultLogger() *Logger {
	return stumpy.L.New(
		logiface.WithLevel[*stumpy.Event](logiface.LevelInformational),
		stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
	)
}

// warnLimiter throttles repeated, identically-categorized warnings (a
// hostile or misbehaving source re-sending the same malformed frame every
// round, say) so the log sink isn't flooded. This is the Go-native
// counterpart of the original firmware's ad hoc "only print every Nth
// occurrence" guards, built on the pack's own rate limiter instead of a
// hand-rolled counter.
type warnLimiter struct {
	l *catrate.Limiter
}

func newWarnLimiter() *warnLimiter {
	return &warnLimiter{l: catrate.NewLimiter(map[time.Duration]int{
		time.Second: 1,
		time.Minute: 10,
	})}
}

// allow reports whether a warning in category should be emitted now.
func (w *warnLimiter) allow(category string) bool {
	if w == nil || w.l == nil {
		return true
	}
	_, ok := w.l.Allow(category)
	return ok
}
