package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/avr"
	"github.com/andyrak/onkyo-ng/pkg/cli"
)

var statusTimeout time.Duration

var statusCmd = &cobra.Command{
	Use:   "status [host]",
	Short: "Show power, volume, muting, and the active input",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&hostFlag, "host", "", "receiver address")
	statusCmd.Flags().IntVar(&portFlag, "port", 0, "eISCP port (default 60128)")
	statusCmd.Flags().DurationVar(&statusTimeout, "timeout", 3*time.Second, "reply collection window")

	rootCmd.AddCommand(statusCmd)
}

// statusReport is the machine-readable shape for -o json/yaml.
type statusReport struct {
	Host      string   `json:"host" yaml:"host"`
	Power     bool     `json:"power" yaml:"power"`
	Volume    int      `json:"volume" yaml:"volume"`
	Muted     bool     `json:"muted" yaml:"muted"`
	InputCode string   `json:"input_code,omitempty" yaml:"input_code,omitempty"`
	InputName string   `json:"input_name,omitempty" yaml:"input_name,omitempty"`
	Missing   []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	opts, err := receiverOptions(args, statusTimeout)
	if err != nil {
		return err
	}

	status, err := avr.QueryStatusSnapshot(cmd.Context(), opts)
	if err != nil {
		return err
	}

	report := statusReport{
		Host:      opts.Host,
		Power:     status.Power,
		Volume:    status.Volume,
		Muted:     status.Muted,
		InputCode: status.InputCode,
		Missing:   status.Missing,
	}
	if !status.Input.IsZero() {
		report.InputName = status.Input.Default()
	}

	if done, err := structuredOutput(report); done || err != nil {
		return err
	}

	power := "off"
	if status.Power {
		power = "on"
	}
	muted := "off"
	if status.Muted {
		muted = "on"
	}
	input := status.InputCode
	if input == "" {
		input = "-"
	} else if !status.Input.IsZero() {
		input = fmt.Sprintf("%s (%s)", status.InputCode, status.Input.Default())
	}

	fmt.Printf("host:    %s\n", opts.Host)
	fmt.Printf("power:   %s\n", power)
	fmt.Printf("volume:  %s\n", cli.FormatVolume(status.Volume))
	fmt.Printf("muting:  %s\n", muted)
	fmt.Printf("input:   %s\n", input)
	if len(status.Missing) > 0 {
		cli.PrintWarning("No reply for: %s", strings.Join(status.Missing, ", "))
	}
	return nil
}
