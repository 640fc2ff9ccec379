package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/theapemachine/qsearch"
)

var (
	configFile string
	v          = viper.New()
)

// rootCmd reads targets from stdin and searches for a preimage of each.
var rootCmd = &cobra.Command{
	Use:   "qsearch",
	Short: "Search hash preimages with a simulated Grover search",
	Long: `qsearch reads one integer target per line from stdin. For every target it
creates a fresh simulator and repeats a Grover search until a preimage is
found, printing one line per attempt:

  Hash(7)!=42
  Hash(42)==42

It runs until stdin is closed or the process is interrupted.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// After the first signal the default handler is restored, so a second one kills.
		go func() {
			<-ctx.Done()
			stop()
		}()

		return run(ctx, qsearch.LoadConfig(v), os.Stdin, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	flags.Int("width", 8, "search register width in qubits")
	flags.Int("max-attempts", 0, "give up on a target after this many attempts (0 = never)")
	flags.Duration("timeout", 0, "give up on a target after this long (0 = never)")
	flags.Duration("backoff", 0, "initial delay between attempts, doubled each retry")
	flags.Bool("tolerate-nonzero-release", true, "measure and reset dirty qubits on release instead of failing")
	flags.Int64("seed", 0, "measurement RNG seed (0 = random)")
	flags.BoolP("verbose", "v", false, "debug logging")

	qsearch.SetDefaults(v)

	bind := func(key, flag string) {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	bind("width", "width")
	bind("max_attempts", "max-attempts")
	bind("timeout", "timeout")
	bind("backoff", "backoff")
	bind("simulator.tolerate_nonzero_release", "tolerate-nonzero-release")
	bind("simulator.seed", "seed")
	bind("verbose", "verbose")

	v.SetEnvPrefix("QSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func loadConfig(cmd *cobra.Command) error {
	if configFile == "" {
		return nil
	}

	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", configFile, err)
	}

	return nil
}

func run(ctx context.Context, config *qsearch.Config, stdin io.Reader, stdout, stderr io.Writer) error {
	logger := log.NewWithOptions(stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "qsearch",
	})
	if config.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if config.Width < 1 || config.Width > config.Simulator.MaxQubits {
		return fmt.Errorf("width %d outside 1..%d", config.Width, config.Simulator.MaxQubits)
	}

	loop := qsearch.NewSearchLoop(
		qsearch.NewGroverSearch(config.Width, qsearch.MixHash(config.Width)),
		qsearch.NewLineReporter(stdout),
		qsearch.WithRetryPolicy(config.RetryPolicy()),
		qsearch.WithLogger(logger),
	)

	session := qsearch.NewSession(config, stdin, loop, qsearch.WithSessionLogger(logger))

	err := session.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("interrupted", "metrics", loop.Metrics().ExportMetrics())
		return nil
	}

	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
