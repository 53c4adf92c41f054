package cli

import (
	"fmt"
	"os"

	"github.com/dexsolver/dexsolver/internal/domain"
	"github.com/dexsolver/dexsolver/internal/ioformat"
	"github.com/dexsolver/dexsolver/internal/solver/viability"
	"github.com/spf13/cobra"
)

var (
	instancePath string
	solutionPath string
	xrateFlag    string
)

// tokenPairCmd matches a single (b_buy_token, s_buy_token) pair against
// the instance's fee token. Grounded on original_source's
// src/main.py's argparse entrypoint and
// src/token_pair_solver/solver.py's own setup_arg_parser/main, which
// define the narrower token-pair-only subcommand this mirrors.
var tokenPairCmd = &cobra.Command{
	Use:   "token-pair <b_buy_token> <s_buy_token>",
	Short: "Match orders over a single token pair",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		buyToken := domain.Token(args[0])
		sellToken := domain.Token(args[1])

		var presetXrate *domain.RationalValue
		if xrateFlag != "" {
			r, err := domain.NewRationalFromString(xrateFlag)
			if err != nil {
				return fmt.Errorf("parsing --xrate %q: %w", xrateFlag, err)
			}
			presetXrate = r
		}

		in, err := os.Open(instancePath)
		if err != nil {
			return fmt.Errorf("opening instance: %w", err)
		}
		defer in.Close()

		instance, err := ioformat.Load(in, solverCfg.MinTradableAmount)
		if err != nil {
			return fmt.Errorf("loading instance: %w", err)
		}

		bOrders, sOrders := ioformat.FilterTokenPair(instance.Orders, buyToken, sellToken)
		fOrders := ioformat.FilterFeeOrders(instance.Orders, instance.Fee, buyToken)

		sol, err := viability.Solve(buyToken, sellToken, bOrders, sOrders, fOrders, instance.Fee, viability.Params{
			Coordinator:        coordinatorParams(presetXrate, instance.Accounts),
			MinAverageOrderFee: solverCfg.MinAverageOrderFee,
		})
		if err != nil {
			return fmt.Errorf("solving token pair: %w", err)
		}

		out, err := solutionWriter()
		if err != nil {
			return err
		}
		defer out.Close()

		if err := ioformat.Dump(out, ioformat.Solution{
			Prices:   sol.Prices,
			Orders:   sol.Orders,
			Accounts: instance.Accounts,
			Fee:      instance.Fee,
		}); err != nil {
			return fmt.Errorf("writing solution: %w", err)
		}

		if verbose {
			logVerboseSummary("token-pair solve complete", sol, instance.Accounts, instance.Fee)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenPairCmd)

	tokenPairCmd.Flags().StringVar(&instancePath, "instance", "", "path to the instance JSON file")
	tokenPairCmd.Flags().StringVar(&solutionPath, "solution", "", "path to write the solution JSON (defaults to a temp file)")
	tokenPairCmd.Flags().StringVar(&xrateFlag, "xrate", "", "pin the b/s exchange rate instead of searching for it, as a fraction (e.g. 17/10)")
	tokenPairCmd.MarkFlagRequired("instance")
}
