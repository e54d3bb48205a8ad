package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ylexus/google-issue-193814298/infrastructure/config"
	"github.com/ylexus/google-issue-193814298/infrastructure/logging"

	"github.com/spf13/cobra"
)

// ErrUsage is returned when the positional arguments are wrong
var ErrUsage = errors.New("usage: google-issue-193814298 <path_to_client_secret_json> <path_to_media_file>")

// DefaultConfigPath is read when --config is not given
const DefaultConfigPath = "config/config.yaml"

var (
	cfgFile     string
	interval    time.Duration
	port        int
	tokenDir    string
	missedTicks string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "google-issue-193814298 <path_to_client_secret_json> <path_to_media_file>",
	Short: "Reproduce Drive and Photos API behaviour with one authorized session",
	Long: `google-issue-193814298 authorizes once against Google APIs, then:

  - Every interval creates an empty marker file in the Drive app data
    folder and reads the storage quota
  - Once, uploads the media file to Google Photos

Every request and response is printed to stdout as
"<timestamp> OUT: ..." or "<timestamp> IN: ...". The program runs until
interrupted.

Example:
  google-issue-193814298 client_secret.json cat.jpg
  google-issue-193814298 --interval 30s --missed-ticks back-to-back client_secret.json cat.jpg`,
	Args:         usageArgs,
	SilenceUsage: true,
	RunE:         runRoot,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// RootCommand returns the root command (for testing)
func RootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print diagnostic messages to stderr")
	rootCmd.Flags().DurationVar(&interval, "interval", config.DefaultInterval, "time between Drive probes")
	rootCmd.Flags().IntVar(&port, "port", config.DefaultCallbackPort, "local port for the OAuth callback")
	rootCmd.Flags().StringVar(&tokenDir, "token-dir", "", "OAuth token cache directory (default is <tmp>/google-auth)")
	rootCmd.Flags().StringVar(&missedTicks, "missed-ticks", config.DefaultMissedTicks, `what to do with probes missed by a slow run: "skip" or "back-to-back"`)
}

func initLogging() {
	logging.SetVerbose(verbose)
}

func usageArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w (got %d arguments)", ErrUsage, len(args))
	}
	return nil
}

// loadConfig reads the config file and applies flags set on the command line
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = DefaultConfigPath
	}

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault(path)
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.Probe.Interval = interval
	}
	if flags.Changed("port") {
		cfg.Google.CallbackPort = port
	}
	if flags.Changed("token-dir") {
		cfg.Google.TokenDirectory = tokenDir
	}
	if flags.Changed("missed-ticks") {
		cfg.Probe.MissedTicks = missedTicks
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
