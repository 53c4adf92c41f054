package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoConfFile(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	defaults := Defaults()
	require.Zero(t, s.MinTradableAmount.Cmp(defaults.MinTradableAmount))
	require.Zero(t, s.FeeTokenPrice.Cmp(defaults.FeeTokenPrice))
	require.Equal(t, defaults.MaxNrExecOrders, s.MaxNrExecOrders)
	require.True(t, s.MinAverageOrderFee.IsZero())
}

func TestLoadOverridesFromConfFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "dexsolver_config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	confContent := `
min_tradable_amount = "5000"
max_nr_exec_orders = 10
min_average_order_fee = "2.5"
`
	confPath := filepath.Join(tempDir, "tunables.toml")
	require.NoError(t, os.WriteFile(confPath, []byte(confContent), 0644))

	s, err := Load(confPath)
	require.NoError(t, err)

	require.Zero(t, s.MinTradableAmount.Cmp(domain.NewRationalFromInt64(5000)))
	require.Equal(t, 10, s.MaxNrExecOrders)
	require.Zero(t, s.MinAverageOrderFee.Cmp(domain.NewRationalFromFrac(5, 2)))

	// Unset keys keep their default.
	require.Zero(t, s.FeeTokenPrice.Cmp(Defaults().FeeTokenPrice))
}

func TestLoadMissingConfFileIsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveMaxNrExecOrders(t *testing.T) {
	tempDir := t.TempDir()
	confPath := filepath.Join(tempDir, "tunables.toml")
	require.NoError(t, os.WriteFile(confPath, []byte("max_nr_exec_orders = 0\n"), 0644))

	_, err := Load(confPath)
	require.Error(t, err)
}
