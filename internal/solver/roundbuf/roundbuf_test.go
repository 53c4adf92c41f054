package roundbuf

import (
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestOpenShrinksAndCloseRestores(t *testing.T) {
	o := domain.NewSyntheticOrder("acct", "B", "S", domain.NewRationalFromInt64(100000), domain.NewRationalFromFrac(1, 1))
	original := o.MaxSellAmount

	buf := Open([]*domain.Order{o}, 10, domain.NewRationalFromInt64(1_000_000))
	require.True(t, o.MaxSellAmount.LessThan(original))

	buf.Close()
	require.Zero(t, o.MaxSellAmount.Cmp(original))
}

func TestOpenClampsAtZero(t *testing.T) {
	o := domain.NewSyntheticOrder("acct", "B", "S", domain.NewRationalFromInt64(5), domain.NewRationalFromFrac(1, 1))

	buf := Open([]*domain.Order{o}, 1, domain.NewRationalFromInt64(1_000_000))
	require.False(t, o.MaxSellAmount.Sign() < 0)
	buf.Close()
	require.Equal(t, "5", o.MaxSellAmount.String())
}
