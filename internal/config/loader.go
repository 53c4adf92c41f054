package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/spf13/viper"
)

// Load builds a Solver from defaults, an optional TOML tunables file
// (--conf), and DEXSOLVER_-prefixed environment variable overrides, in
// that priority order. An empty confPath loads defaults plus
// environment only -- a missing --conf is not an error, unlike a
// --conf path that does not exist.
func Load(confPath string) (Solver, error) {
	v := viper.New()
	setDefaults(v)

	if confPath != "" {
		if _, err := os.Stat(confPath); err != nil {
			return Solver{}, fmt.Errorf("config: --conf file %q: %w", confPath, err)
		}
		v.SetConfigFile(confPath)
		if err := v.ReadInConfig(); err != nil {
			return Solver{}, fmt.Errorf("config: failed to read %q: %w", confPath, err)
		}
	}

	v.SetEnvPrefix("DEXSOLVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

// fromViper parses every tunable as an exact rational (accepting both
// integer and decimal literals) rather than trusting float64, since a
// mistyped price or amount must never silently lose precision before
// it even reaches the solver.
func fromViper(v *viper.Viper) (Solver, error) {
	rat := func(key string) (*domain.RationalValue, error) {
		s := v.GetString(key)
		r, err := domain.NewRationalFromString(s)
		if err != nil {
			return nil, fmt.Errorf("config: %s=%q: %w", key, s, err)
		}
		return r, nil
	}

	minTradable, err := rat("min_tradable_amount")
	if err != nil {
		return Solver{}, err
	}
	feeTokenPrice, err := rat("fee_token_price")
	if err != nil {
		return Solver{}, err
	}
	minAvgFee, err := rat("min_average_order_fee")
	if err != nil {
		return Solver{}, err
	}
	minAbsFee, err := rat("min_absolute_order_fee")
	if err != nil {
		return Solver{}, err
	}
	roundingTol, err := rat("min_tradable_amount_rounding_tol")
	if err != nil {
		return Solver{}, err
	}
	maxRoundingVolume, err := rat("max_rounding_volume")
	if err != nil {
		return Solver{}, err
	}

	maxNrExecOrders := v.GetInt("max_nr_exec_orders")
	if maxNrExecOrders <= 0 {
		return Solver{}, fmt.Errorf("config: max_nr_exec_orders must be positive, got %d", maxNrExecOrders)
	}

	return Solver{
		MinTradableAmount:            minTradable,
		FeeTokenPrice:                feeTokenPrice,
		MaxNrExecOrders:              maxNrExecOrders,
		MinAverageOrderFee:           minAvgFee,
		MinAbsoluteOrderFee:          minAbsFee,
		MinTradableAmountRoundingTol: roundingTol,
		MaxRoundingVolume:            maxRoundingVolume,
		PriceEstimationError:         int64(v.GetInt("price_estimation_error")),
	}, nil
}
