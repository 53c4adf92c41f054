package cli

import (
	"fmt"
	"os"

	"github.com/dexsolver/dexsolver/internal/config"
	"github.com/dexsolver/dexsolver/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	confFile     string
	debug        bool
	verbose      bool
	quiet        bool
	logLevel     string
	logRationals bool

	solverCfg config.Solver
	logger    zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dexsolver",
	Short: "dexsolver - batch auction order-matching solver",
	Long: `dexsolver computes an optimal execution of a set of limit orders over
a pair of tokens (or, via best-token-pair, over whichever reachable pair
yields the best objective), routing the fee it collects through a
dedicated fee token. This is an idiomatic Go implementation, not a
direct translation of the Python reference solver it stays wire
compatible with.`,
	Version: "0.1.0-dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(confFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		solverCfg = cfg

		level := logLevel
		if debug {
			level = "debug"
		}
		if quiet {
			level = "error"
		}
		logger = logging.New(logging.Options{Level: level, LogRationals: logRationals})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&confFile, "conf", "", "TOML file of solver tunables overriding the defaults")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a human-readable summary of the solution")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all but error logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "logging", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logRationals, "log-rationals", false, "render logged amounts as exact fractions instead of decimals")
}
