package cli

import (
	"os"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/metrics"
	"github.com/dexsolver/dexsolver/internal/solver/coordinator"
	"github.com/dustin/go-humanize"
)

// coordinatorParams assembles a coordinator.Params from the loaded
// solver tunables plus whatever a command's own flags contribute
// (a preset exchange rate, the instance's accounts for the post-
// rounding balance check).
func coordinatorParams(presetXrate *domain.RationalValue, accounts domain.Accounts) coordinator.Params {
	return coordinator.Params{
		FeeTokenPrice:        solverCfg.FeeTokenPrice,
		MaxNrExecOrders:      solverCfg.MaxNrExecOrders,
		MinTradableAmount:    solverCfg.MinTradableAmount,
		PriceEstimationError: solverCfg.PriceEstimationError,
		MaxRoundingVolume:    solverCfg.MaxRoundingVolume,
		Accounts:             accounts,
		PresetXrate:          presetXrate,
	}
}

// trivialBestSolution is the empty solution best-token-pair dumps when
// no reachable pair admits any match at all.
func trivialBestSolution() *coordinator.Solution {
	return &coordinator.Solution{}
}

// logVerboseSummary prints a human-readable one-line recap of a solve
// under --verbose: touched-order count plus comma-grouped volume and
// fee totals, via go-humanize rather than raw integer strings.
func logVerboseSummary(label string, sol *coordinator.Solution, accounts domain.Accounts, fee domain.Fee) {
	accountsUpdated := accounts.Clone()
	for _, o := range sol.Orders {
		accountsUpdated.ApplyOrder(o)
	}
	m := metrics.Compute(sol.Prices, accountsUpdated, sol.Orders, fee)
	logger.Info().
		Int("orders_touched", m.OrdersTouched).
		Str("volume", humanize.Comma(m.Volume.FloorInt64())).
		Str("fees", humanize.Comma(m.Fees.FloorInt64())).
		Str("solution", solutionPath).
		Msg(label)
}

// solutionWriter opens solutionPath for writing, or a fresh temp file
// under the default prefix/suffix when the flag is left empty --
// matching main.py's tempfile.NamedTemporaryFile(prefix="solution-",
// suffix=".json") default.
func solutionWriter() (*os.File, error) {
	if solutionPath == "" {
		f, err := os.CreateTemp("", "solution-*.json")
		if err != nil {
			return nil, err
		}
		solutionPath = f.Name()
		return f, nil
	}
	return os.Create(solutionPath)
}
