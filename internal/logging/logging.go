// Package logging sets up the solver's structured tracing: a leveled
// zerolog logger writing to a console-formatted writer, with a
// RationalValue renderer that switches between floats and exact
// fractions depending on the --log-rationals flag.
//
// Grounded on original_source's src/core/util.py's LoggerFormatter,
// which the same way toggles between PrettyFloat and PrettyFraction
// rendering of every Fraction argument a log call carries.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/rs/zerolog"
)

// Options configures New.
type Options struct {
	// Level is one of zerolog's level names ("debug", "info", "warn",
	// "error"); an empty or unrecognized value falls back to "info".
	Level string
	// LogRationals renders RationalValue arguments as exact fractions
	// ("17/10") when true, or as a decimal approximation when false --
	// the Go analogue of LoggerFormatter's `rationals` flag.
	LogRationals bool
	// Writer defaults to os.Stderr, matching the teacher's CLI
	// convention of leaving stdout free for a command's actual output
	// (e.g. the solution JSON a token-pair solve writes to --solution).
	Writer io.Writer
}

// New builds a zerolog.Logger writing human-readable console output.
func New(opts Options) zerolog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Rational renders v for a log field the way LoggerFormatter's
// transform_fractions_to_floats / prettify_fractions pair does: an
// exact fraction string when logRationals is set, otherwise a decimal
// approximation to 6 places.
func Rational(v *domain.RationalValue, logRationals bool) string {
	if v == nil {
		return ""
	}
	if logRationals {
		return v.String()
	}
	return v.FloatString(6)
}

// Order renders an order's identity and current fill for a log message
// field, honoring the same --log-rationals toggle as Rational. Synthetic
// market orders (Index == -1, created by the fee-imbalance pricer) are
// identified by their SyntheticID instead of an index.
func Order(o *domain.Order, logRationals bool) string {
	id := fmt.Sprintf("#%d", o.Index)
	if o.Index == -1 {
		id = "synthetic:" + o.SyntheticID
	}
	return fmt.Sprintf("%s (%s->%s) buy=%s sell=%s",
		id, o.SellToken, o.BuyToken,
		Rational(o.BuyAmount, logRationals), Rational(o.SellAmount, logRationals))
}
