package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/avr"
	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/eiscp"
)

// probeSpacing paces the outgoing queries; some firmware drops
// back-to-back messages.
const probeSpacing = 50 * time.Millisecond

var (
	probeWindow time.Duration
	probeInputs string
)

var probeCmd = &cobra.Command{
	Use:   "probe [host]",
	Short: "Send rename queries and dump every raw reply",
	Long: `Diagnostic twin of 'names': send a rename query for each input,
then print every message the receiver pushes during the window exactly
as it arrived, followed by a parse of the rename replies.

Useful when a receiver answers with codes outside the catalog or when
deciding which inputs a model actually exposes.

Examples:
  onkyoctl probe 192.168.1.42
  onkyoctl probe --inputs 01,10 --window 5s`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringVar(&hostFlag, "host", "", "receiver address")
	probeCmd.Flags().IntVar(&portFlag, "port", 0, "eISCP port (default 60128)")
	probeCmd.Flags().DurationVar(&probeWindow, "window", 10*time.Second, "reply collection window")
	probeCmd.Flags().StringVar(&probeInputs, "inputs", "", "comma-separated selector codes to query (default: all)")

	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	opts, err := receiverOptions(args, probeWindow)
	if err != nil {
		return err
	}
	sources, err := parseInputs(probeInputs)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		sources = avr.Inputs()
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

	cli.PrintInfo("Probing %s, querying %d input(s)", opts.Host, len(sources))

	for i, in := range sources {
		if i > 0 {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(probeSpacing):
			}
		}
		if err := conn.Send(cmd.Context(), eiscp.ZoneMain, "IRN", in.Code()); err != nil {
			cli.PrintWarning("send IRN%s: %v", in.Code(), err)
		}
	}

	// Dump the raw stream for the rest of the window, then report the
	// renames that parsed.
	type rename struct{ code, name string }
	var renames []rename

	collectCtx, cancel := context.WithTimeout(cmd.Context(), probeWindow)
	defer cancel()

	received := 0
	for {
		msg, err := conn.Recv(collectCtx)
		if err != nil {
			var malformed *eiscp.MalformedMessageError
			if errors.As(err, &malformed) {
				fmt.Printf("  ?? %s\n", err)
				continue
			}
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
		received++
		fmt.Printf("  << %-32s (%s)\n", msg.String(), msg.Friendly(eiscp.ZoneMain))

		if msg.Command == "IRN" {
			if code, name, ok := avr.ParseRenameValue(msg.Value); ok {
				renames = append(renames, rename{code, name})
			}
		}
	}

	fmt.Println()
	if received == 0 {
		cli.PrintWarning("No replies within %s", probeWindow)
		return nil
	}
	cli.PrintInfo("%d message(s), %d parseable rename(s)", received, len(renames))
	for _, r := range renames {
		known := "unknown code"
		if in, ok := avr.InputByCode(r.code); ok {
			known = in.Default()
		}
		fmt.Printf("  %s %q (default %s)\n", r.code, r.name, known)
	}
	return nil
}
