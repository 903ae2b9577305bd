package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/avr"
	"github.com/andyrak/onkyo-ng/pkg/cli"
)

var (
	namesTimeout time.Duration
	namesInputs  string
	namesSave    bool
)

var namesCmd = &cobra.Command{
	Use:   "names [host]",
	Short: "Query custom input names and show the display-name table",
	Long: `Query the receiver for the custom names assigned to its input
sources and print the full display-name table: selector code, factory
default, any custom name, and the effective name.

Receivers answer the rename query only for inputs that actually carry a
custom name, so a partial result is the normal outcome. The status line
distinguishes that from a receiver that could not be reached at all.

Examples:
  onkyoctl names 192.168.1.42
  onkyoctl names --inputs 01,10,12 --timeout 5s
  onkyoctl names -c den --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNames,
}

func init() {
	namesCmd.Flags().StringVar(&hostFlag, "host", "", "receiver address")
	namesCmd.Flags().IntVar(&portFlag, "port", 0, "eISCP port (default 60128)")
	namesCmd.Flags().DurationVar(&namesTimeout, "timeout", 0, "reply collection window (default 10s)")
	namesCmd.Flags().StringVar(&namesInputs, "inputs", "", "comma-separated selector codes to query (default: all)")
	namesCmd.Flags().BoolVar(&namesSave, "save", false, "store the result in the receiver inventory")

	rootCmd.AddCommand(namesCmd)
}

// namesReport is the machine-readable shape for -o json/yaml.
type namesReport struct {
	Host   string            `json:"host" yaml:"host"`
	Status string            `json:"status" yaml:"status"`
	Error  string            `json:"error,omitempty" yaml:"error,omitempty"`
	Names  []namesReportItem `json:"names" yaml:"names"`
}

type namesReportItem struct {
	Code      string `json:"code" yaml:"code"`
	Default   string `json:"default" yaml:"default"`
	Custom    string `json:"custom,omitempty" yaml:"custom,omitempty"`
	Effective string `json:"effective" yaml:"effective"`
}

func runNames(cmd *cobra.Command, args []string) error {
	opts, err := receiverOptions(args, namesTimeout)
	if err != nil {
		return err
	}
	subset, err := parseInputs(namesInputs)
	if err != nil {
		return err
	}

	var (
		result  avr.NameResult
		display map[avr.InputSource]string
		listed  []avr.InputSource
	)
	if len(subset) > 0 {
		result = avr.QueryInputNames(cmd.Context(), opts, subset...)
		listed = subset
		display = make(map[avr.InputSource]string, len(subset))
		for _, in := range subset {
			display[in] = in.Default()
		}
		for in, name := range result.Names {
			display[in] = name
		}
	} else {
		display, result = avr.DisplayNames(cmd.Context(), opts)
		listed = avr.Inputs()
	}

	report := namesReport{
		Host:   opts.Host,
		Status: result.Status.String(),
	}
	if result.Err != nil {
		report.Error = result.Err.Error()
	}
	for _, in := range listed {
		report.Names = append(report.Names, namesReportItem{
			Code:      in.Code(),
			Default:   in.Default(),
			Custom:    result.Names[in],
			Effective: display[in],
		})
	}

	if done, err := structuredOutput(report); done || err != nil {
		return err
	}

	rows := make([][]string, 0, len(report.Names))
	for _, item := range report.Names {
		rows = append(rows, []string{item.Code, item.Default, item.Custom, item.Effective})
	}
	fmt.Print(cli.FormatTable([]string{"CODE", "DEFAULT", "CUSTOM", "EFFECTIVE"}, rows))

	switch result.Status {
	case avr.QueryComplete:
		cli.PrintSuccess("Query complete: every queried input answered")
	case avr.QueryPartial:
		cli.PrintInfo("Query partial: %d custom name(s), %d input(s) silent",
			len(result.Names), len(result.Unanswered))
	case avr.QueryFailed:
		cli.PrintWarning("Query failed, showing factory defaults: %v", result.Err)
	}

	if namesSave {
		if err := saveNames(cmd, opts.Host, result); err != nil {
			cli.PrintWarning("Could not save names: %v", err)
		}
	}
	return nil
}

// saveNames merges a fresh query result into the inventory record whose
// stored host matches. Receivers are keyed by MAC, which only discovery
// learns, so an undiscovered receiver cannot be saved yet.
func saveNames(cmd *cobra.Command, host string, result avr.NameResult) error {
	if result.Status == avr.QueryFailed {
		return fmt.Errorf("nothing to save from a failed query")
	}

	store, err := openInventory()
	if err != nil {
		return err
	}
	defer store.Close()

	receivers, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, rec := range receivers {
		if rec.Host != host {
			continue
		}
		names := make(map[string]string, len(result.Names))
		for in, name := range result.Names {
			names[in.Code()] = name
		}
		if err := store.SetNames(cmd.Context(), rec.MAC, names); err != nil {
			return err
		}
		cli.PrintSuccess("Saved %d name(s) for %s (%s)",
			len(names), rec.Model, cli.FormatMAC(rec.MAC))
		return nil
	}
	return fmt.Errorf("host %s is not in the inventory; run 'onkyoctl discover --save' first", host)
}
