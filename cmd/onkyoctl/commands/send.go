package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

var (
	sendZone string
	sendFile string
	sendWait time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send [host] <command> [value]",
	Short: "Send a raw or friendly-named command",
	Long: `Send one command to the receiver and print the replies that
arrive within the wait window. The command may be a raw 3-character
code or a friendly name from the catalog; the value defaults to QSTN,
the query form.

With --file a YAML or JSON batch is sent instead, one entry per
command:

  commands:
    - command: system-power
      value: "01"
    - zone: zone2
      command: ZVL
      value: QSTN

Examples:
  onkyoctl send 192.168.1.42 PWR QSTN
  onkyoctl send 192.168.1.42 master-volume 2E
  onkyoctl send -c den --file scene.yaml`,
	Args: cobra.RangeArgs(0, 3),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&hostFlag, "host", "", "receiver address")
	sendCmd.Flags().IntVar(&portFlag, "port", 0, "eISCP port (default 60128)")
	sendCmd.Flags().StringVar(&sendZone, "zone", "", "command zone: main, zone2, zone3, zone4")
	sendCmd.Flags().StringVar(&sendFile, "file", "", "YAML/JSON batch file, - for stdin")
	sendCmd.Flags().DurationVar(&sendWait, "wait", time.Second, "reply collection window after sending")

	rootCmd.AddCommand(sendCmd)
}

// sendBatch is the --file request shape.
type sendBatch struct {
	Commands []sendEntry `yaml:"commands" json:"commands"`
}

type sendEntry struct {
	Zone    string `yaml:"zone,omitempty" json:"zone,omitempty"`
	Command string `yaml:"command" json:"command"`
	Value   string `yaml:"value,omitempty" json:"value,omitempty"`
}

func runSend(cmd *cobra.Command, args []string) error {
	var entries []sendEntry
	var hostArgs []string

	if sendFile != "" {
		var batch sendBatch
		if err := cli.LoadBatch(sendFile, &batch); err != nil {
			return err
		}
		if len(batch.Commands) == 0 {
			return fmt.Errorf("batch file %s has no commands", sendFile)
		}
		entries = batch.Commands
		hostArgs = args
	} else {
		if len(args) == 0 {
			return fmt.Errorf("a command is required (or use --file)")
		}
		// With two or more args the first may be the host; a catalog
		// command or raw code is never a valid address, so try it as a
		// command first.
		zone, err := resolveSendZone("")
		if err != nil {
			return err
		}
		if _, err := eiscp.ResolveCommand(zone, args[0]); err == nil {
			entries = []sendEntry{{Command: args[0], Value: argOr(args, 1, eiscp.QueryValue)}}
		} else {
			if len(args) < 2 {
				return fmt.Errorf("a command is required after the host")
			}
			hostArgs = args[:1]
			entries = []sendEntry{{Command: args[1], Value: argOr(args, 2, eiscp.QueryValue)}}
		}
	}

	opts, err := receiverOptions(hostArgs, 0)
	if err != nil {
		return err
	}

	conn, err := eiscp.Connect(cmd.Context(), eiscp.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		Ending: opts.Ending,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	for i, entry := range entries {
		zone, err := resolveSendZone(entry.Zone)
		if err != nil {
			return err
		}
		value := entry.Value
		if value == "" {
			value = eiscp.QueryValue
		}
		if i > 0 {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(50 * time.Millisecond):
			}
		}
		if err := conn.Send(cmd.Context(), zone, entry.Command, value); err != nil {
			return err
		}
		cli.PrintVerbose(isVerbose(), "sent %s %s%s", zone, entry.Command, value)
	}

	// Handshake-free protocol: collect whatever comes back in the
	// window and show it.
	collectCtx, cancel := context.WithTimeout(cmd.Context(), sendWait)
	defer cancel()

	var replies []string
	for {
		msg, err := conn.Recv(collectCtx)
		if err != nil {
			var malformed *eiscp.MalformedMessageError
			if errors.As(err, &malformed) {
				continue
			}
			break
		}
		replies = append(replies, msg.String())
		fmt.Printf("  << %-32s (%s)\n", msg.String(), msg.Friendly(eiscp.ZoneMain))
	}
	if len(replies) == 0 {
		cli.PrintInfo("No replies within %s", sendWait)
	}
	return nil
}

// resolveSendZone picks the zone: entry value, then --zone, then the
// context, then main.
func resolveSendZone(entryZone string) (eiscp.Zone, error) {
	if entryZone != "" {
		return eiscp.ParseZone(entryZone)
	}
	if sendZone != "" {
		return eiscp.ParseZone(sendZone)
	}
	return contextZone()
}

func argOr(args []string, i int, fallback string) string {
	if len(args) > i {
		return args[i]
	}
	return fallback
}
