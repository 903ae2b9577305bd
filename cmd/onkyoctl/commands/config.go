package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and receiver contexts.

A context names one receiver and its connection settings, similar to
kubectl's context management. Configuration is stored in
~/.onkyo/onkyoctl/config.yaml.`,
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage receiver contexts",
}

var contextListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contexts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		names := cfg.ListContexts()
		if len(names) == 0 {
			cli.PrintInfo("No contexts configured. Add one with 'onkyoctl config context set <name> --host <addr>'")
			return nil
		}

		rows := make([][]string, 0, len(names))
		for _, name := range names {
			ctx, err := cfg.GetContext(name)
			if err != nil {
				return err
			}
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			port := ""
			if ctx.Port != 0 {
				port = strconv.Itoa(ctx.Port)
			}
			rows = append(rows, []string{current, name, ctx.Host, port, ctx.Zone})
		}
		fmt.Print(cli.FormatTable([]string{"", "NAME", "HOST", "PORT", "ZONE"}, rows))
		return nil
	},
}

var contextShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a context (default: current)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		ctx, err := cfg.ResolveContext(name)
		if err != nil {
			return err
		}
		return cli.Output(ctx, cli.OutputOptions{Format: cli.FormatYAML})
	},
}

var contextSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or update a context",
	Long: `Create or update a context. Unset flags keep their previous value
when the context already exists.

Example:
  onkyoctl config context set den --host 192.168.1.42 --timeout 5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		cfg := getConfig()

		ctx, err := cfg.GetContext(name)
		if err != nil {
			ctx = &cli.Context{}
		}

		if cmd.Flags().Changed("host") {
			ctx.Host, _ = cmd.Flags().GetString("host")
		}
		if cmd.Flags().Changed("port") {
			ctx.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("zone") {
			zone, _ := cmd.Flags().GetString("zone")
			if _, err := eiscp.ParseZone(zone); err != nil {
				return err
			}
			ctx.Zone = zone
		}
		if cmd.Flags().Changed("timeout") {
			ctx.Timeout, _ = cmd.Flags().GetInt("timeout")
		}
		if cmd.Flags().Changed("ending") {
			ending, _ := cmd.Flags().GetString("ending")
			if _, err := eiscp.ParseEnding(ending); err != nil {
				return err
			}
			ctx.Ending = ending
		}

		if ctx.Host == "" {
			return fmt.Errorf("--host is required for a new context")
		}
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q saved", name)
		return nil
	},
}

var contextUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var contextDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !deleteYes && !cli.Confirm(fmt.Sprintf("Delete context %q", args[0])) {
			cli.PrintInfo("Aborted")
			return nil
		}
		if err := getConfig().DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var deleteYes bool

func init() {
	contextSetCmd.Flags().String("host", "", "receiver address")
	contextSetCmd.Flags().Int("port", 0, "eISCP port")
	contextSetCmd.Flags().String("zone", "", "command zone: main, zone2, zone3, zone4")
	contextSetCmd.Flags().Int("timeout", 0, "reply collection window in seconds")
	contextSetCmd.Flags().String("ending", "", "end-byte variant: crlf, eof, cr, lf, eof-cr, em-cr-lf, eof-cr-lf")

	contextDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")

	contextCmd.AddCommand(contextListCmd)
	contextCmd.AddCommand(contextShowCmd)
	contextCmd.AddCommand(contextSetCmd)
	contextCmd.AddCommand(contextUseCmd)
	contextCmd.AddCommand(contextDeleteCmd)
	configCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(configCmd)
}
