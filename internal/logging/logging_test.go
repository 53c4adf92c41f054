package logging

import (
	"bytes"
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRationalRendersExactFractionWhenEnabled(t *testing.T) {
	v := domain.NewRationalFromFrac(17, 10)
	require.Equal(t, "17/10", Rational(v, true))
}

func TestRationalRendersDecimalWhenDisabled(t *testing.T) {
	v := domain.NewRationalFromFrac(1, 4)
	require.Equal(t, "0.250000", Rational(v, false))
}

func TestNewDefaultsToInfoLevelOnUnrecognizedLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "not-a-level", Writer: &buf})
	logger.Debug().Msg("should not appear")
	require.Empty(t, buf.String())

	logger.Info().Msg("should appear")
	require.NotEmpty(t, buf.String())
}
