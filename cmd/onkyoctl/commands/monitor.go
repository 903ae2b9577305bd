package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/avr"
	"github.com/andyrak/onkyo-ng/pkg/cli"
)

var (
	monitorRaw    bool
	monitorWidth  int
	monitorHeight int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor [host]",
	Short: "Stream receiver events live",
	Long: `Connect to the receiver and show every message it broadcasts:
volume turns, input switches, power changes, renames. Receivers push
state changes to all connected controllers, so the stream needs no
polling.

The default view is a framed terminal UI; --raw prints one line per
event for piping.

Examples:
  onkyoctl monitor 192.168.1.42
  onkyoctl monitor --raw | grep MVL`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&hostFlag, "host", "", "receiver address")
	monitorCmd.Flags().IntVar(&portFlag, "port", 0, "eISCP port (default 60128)")
	monitorCmd.Flags().BoolVar(&monitorRaw, "raw", false, "plain line output instead of the TUI")
	monitorCmd.Flags().IntVar(&monitorWidth, "width", 100, "frame width for the TUI")
	monitorCmd.Flags().IntVar(&monitorHeight, "height", 30, "frame height for the TUI")

	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	opts, err := receiverOptions(args, 0)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if monitorRaw {
		return monitorPlain(ctx, opts)
	}
	return monitorFramed(ctx, opts)
}

func eventLine(ev avr.Event) string {
	line := fmt.Sprintf("%s  %s %-28s", ev.Time.Format("15:04:05"), ev.Command, ev.Value)
	if ev.Pretty != "" {
		line += "  " + ev.Pretty
	}
	return line
}

func monitorPlain(ctx context.Context, opts avr.Options) error {
	for ev, err := range avr.Events(ctx, opts) {
		if err != nil {
			return err
		}
		fmt.Println(eventLine(ev))
	}
	return nil
}

// monitorFramed renders the event stream in a lipgloss frame with a log
// region underneath, redrawn on a fixed tick.
func monitorFramed(ctx context.Context, opts avr.Options) error {
	events := cli.NewLogWriter(256)
	logs := cli.NewLogWriter(64)

	// Route protocol traces into the frame's log region instead of
	// tearing the display.
	level := slog.LevelWarn
	if isVerbose() {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: level}))

	errCh := make(chan error, 1)
	go func() {
		for ev, err := range avr.Events(ctx, opts) {
			if err != nil {
				errCh <- err
				return
			}
			fmt.Fprintln(events, eventLine(ev))
		}
		errCh <- nil
	}()

	frame := cli.Frame{
		Styles: cli.NewStyles(cli.DefaultTheme),
		Title:  "onkyoctl monitor",
		Status: opts.Host,
		Sections: []cli.Section{
			{Label: " Events ", Content: events.Lines},
			{Label: " Log ", Content: logs.Lines},
		},
		Help: "ctrl+c to quit",
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	redraw := func() {
		// Home the cursor and clear before each frame.
		fmt.Print("\033[H\033[2J")
		fmt.Println(frame.Render(monitorWidth, monitorHeight))
	}
	redraw()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case <-events.Channel():
			// New event: repaint now instead of waiting out the tick.
			redraw()
		case <-ticker.C:
			redraw()
		}
	}
}
