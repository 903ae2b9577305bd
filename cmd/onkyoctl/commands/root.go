package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/avr"
	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

const appName = "onkyoctl"

// DefaultHost is tried when neither an argument, a flag, nor a context
// names a receiver.
const DefaultHost = "192.168.1.100"

var (
	// Global flags
	cfgFile      string
	contextName  string
	outputFormat string
	verbose      bool

	// Per-command connection flags, bound by commands that talk to a
	// receiver.
	hostFlag string
	portFlag int

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "onkyoctl",
	Short: "Control Onkyo/Integra receivers over eISCP",
	Long: `onkyoctl - A command line interface for Onkyo/Integra AV receivers.

The receiver speaks eISCP on TCP port 60128. This tool queries the
custom names owners assign to input sources, discovers receivers on
the local network, snapshots and monitors receiver state, and sends
raw control commands.

Configuration is stored in ~/.onkyo/onkyoctl/ and supports multiple
contexts, similar to kubectl's context management. A context names one
receiver; most commands also take the host as a positional argument.

Examples:
  # Find receivers on the LAN and remember them
  onkyoctl discover --save

  # Show the display-name table for a receiver
  onkyoctl names 192.168.1.42

  # Keep a context for the living-room receiver
  onkyoctl config context set den --host 192.168.1.42
  onkyoctl -c den status

  # Raw control
  onkyoctl send 192.168.1.42 system-power on`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.onkyo/onkyoctl/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: yaml, json, raw (default: human readable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (protocol traces)")
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// currentContext returns the resolved context, or nil when none is
// configured. Commands fall back to flags and defaults in that case; a
// context named explicitly but missing is still an error.
func currentContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, nil
	}
	ctx, err := cfg.ResolveContext(contextName)
	if err != nil {
		if contextName == "" && os.Getenv(cli.ContextEnvVar) == "" {
			return nil, nil
		}
		return nil, err
	}
	return ctx, nil
}

// resolveHost picks the receiver address: positional argument, then the
// --host flag, then the context, then the default.
func resolveHost(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if hostFlag != "" {
		return hostFlag, nil
	}
	ctx, err := currentContext()
	if err != nil {
		return "", err
	}
	if ctx != nil && ctx.Host != "" {
		return ctx.Host, nil
	}
	return DefaultHost, nil
}

// receiverOptions builds avr.Options for a command: the host from
// resolveHost, then flag values, then context values, then library
// defaults.
func receiverOptions(args []string, timeout time.Duration) (avr.Options, error) {
	host, err := resolveHost(args)
	if err != nil {
		return avr.Options{}, err
	}
	opts := avr.Options{
		Host:    host,
		Port:    portFlag,
		Timeout: timeout,
	}

	ctx, err := currentContext()
	if err != nil {
		return avr.Options{}, err
	}
	if ctx != nil {
		if opts.Port == 0 {
			opts.Port = ctx.Port
		}
		if opts.Timeout == 0 && ctx.Timeout > 0 {
			opts.Timeout = time.Duration(ctx.Timeout) * time.Second
		}
		if ctx.Ending != "" {
			ending, err := eiscp.ParseEnding(ctx.Ending)
			if err != nil {
				return avr.Options{}, fmt.Errorf("context %q: %w", ctx.Name, err)
			}
			opts.Ending = ending
		}
	}
	return opts, nil
}

// contextZone returns the context's zone, main when unset.
func contextZone() (eiscp.Zone, error) {
	ctx, err := currentContext()
	if err != nil {
		return "", err
	}
	if ctx == nil || ctx.Zone == "" {
		return eiscp.ZoneMain, nil
	}
	return eiscp.ParseZone(ctx.Zone)
}

// parseInputs turns a comma-separated list of selector codes into
// catalog entries.
func parseInputs(spec string) ([]avr.InputSource, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var sources []avr.InputSource
	for _, code := range strings.Split(spec, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		in, ok := avr.InputByCode(code)
		if !ok {
			return nil, fmt.Errorf("unknown input code %q", code)
		}
		sources = append(sources, in)
	}
	return sources, nil
}

// structuredOutput reports whether -o asked for machine-readable output
// and emits it when so.
func structuredOutput(result any) (bool, error) {
	if outputFormat == "" {
		return false, nil
	}
	return true, cli.Output(result, cli.OutputOptions{
		Format: cli.OutputFormat(outputFormat),
	})
}

// isVerbose returns whether verbose mode is enabled
func isVerbose() bool {
	return verbose
}
