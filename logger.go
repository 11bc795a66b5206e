package erbatch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/erbatch/core"
)

// Logger is the slog.Logger used by DataModule. Its helpers emit the
// setup, pair count, leak check and epoch events with fixed field names.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a Logger writing to handler, or Info-level text on
// stderr when handler is nil.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		return NewTextLogger(slog.LevelInfo)
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON lines at level and above to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs key=value lines at level and above to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithMode adds a mode field to the logger.
func (l *Logger) WithMode(mode Mode) *Logger {
	return &Logger{
		Logger: l.Logger.With("mode", mode.String()),
	}
}

// WithSplit adds a split field to the logger.
func (l *Logger) WithSplit(split core.Split) *Logger {
	return &Logger{
		Logger: l.Logger.With("split", string(split)),
	}
}

// LogPairCount logs the size of a split's positive pair set.
func (l *Logger) LogPairCount(ctx context.Context, split core.Split, count int) {
	l.InfoContext(ctx, "positive pair count",
		"split", string(split),
		"pairs", count,
	)
}

// LogLeakCheck logs the outcome of the cross-split leak check.
func (l *Logger) LogLeakCheck(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "leak check failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "leak check passed")
	}
}

// LogSetup logs a stage setup.
func (l *Logger) LogSetup(ctx context.Context, stage Stage, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "setup failed",
			"stage", stage.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "setup completed",
			"stage", stage.String(),
			"duration", duration,
		)
	}
}

// LogEpoch logs the start of a training epoch. units is the number of
// clusters (or pairs, in pairwise mode) the epoch draws from.
func (l *Logger) LogEpoch(ctx context.Context, epoch int, seed int64, units int) {
	l.DebugContext(ctx, "training epoch",
		"epoch", epoch,
		"seed", seed,
		"units", units,
	)
}
