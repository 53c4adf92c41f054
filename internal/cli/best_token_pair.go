package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dexsolver/dexsolver/internal/bestpair"
	"github.com/dexsolver/dexsolver/internal/ioformat"
	"github.com/spf13/cobra"
)

// bestTokenPairCmd scores every token pair reachable from the fee
// token and keeps the one with the highest realized utility. Grounded
// on original_source's src/best_token_pair_solver/solver.py's main,
// which permutes over compute_connected_tokens the same way.
var bestTokenPairCmd = &cobra.Command{
	Use:   "best-token-pair",
	Short: "Match orders over whichever reachable token pair scores best",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(instancePath)
		if err != nil {
			return fmt.Errorf("opening instance: %w", err)
		}
		defer in.Close()

		instance, err := ioformat.Load(in, solverCfg.MinTradableAmount)
		if err != nil {
			return fmt.Errorf("loading instance: %w", err)
		}

		iter := bestpair.NewConnectedTokensIterator(instance.Orders, instance.Fee.Token)
		sol, err := bestpair.Solve(context.Background(), iter, instance.Orders, instance.Fee, solverCfg)
		if err != nil {
			return fmt.Errorf("solving best token pair: %w", err)
		}
		if sol == nil {
			sol = trivialBestSolution()
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
			logVerboseSummary("best-token-pair solve complete", sol, instance.Accounts, instance.Fee)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bestTokenPairCmd)

	bestTokenPairCmd.Flags().StringVar(&instancePath, "instance", "", "path to the instance JSON file")
	bestTokenPairCmd.Flags().StringVar(&solutionPath, "solution", "", "path to write the solution JSON (defaults to a temp file)")
	bestTokenPairCmd.MarkFlagRequired("instance")
}
