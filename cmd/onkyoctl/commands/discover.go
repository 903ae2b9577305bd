package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/eiscp"
	"github.com/andyrak/onkyo-ng/pkg/inventory"
)

var (
	discoverWait time.Duration
	discoverSave bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Scan the network for receivers",
	Long: `Broadcast an eISCP discovery query and list every receiver that
answers: model, address, port, region, and MAC.

With --save each receiver is stored in the inventory, keyed by MAC, so
later commands can find it after a DHCP address change.

Examples:
  onkyoctl discover
  onkyoctl discover --wait 5s --save`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverWait, "wait", 0, "reply collection window (default 2s)")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "store discovered receivers in the inventory")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, _ []string) error {
	devices, err := eiscp.Discover(cmd.Context(), eiscp.DiscoverConfig{
		Wait: discoverWait,
	})
	if err != nil {
		return err
	}

	if done, err := structuredOutput(devices); done || err != nil {
		return err
	}

	if len(devices) == 0 {
		cli.PrintInfo("No receivers found")
		return nil
	}

	rows := make([][]string, 0, len(devices))
	for _, dev := range devices {
		rows = append(rows, []string{
			dev.Model,
			dev.Host,
			strconv.Itoa(dev.Port),
			dev.Region,
			cli.FormatMAC(dev.MAC),
		})
	}
	fmt.Print(cli.FormatTable([]string{"MODEL", "HOST", "PORT", "REGION", "MAC"}, rows))

	if !discoverSave {
		return nil
	}

	store, err := openInventory()
	if err != nil {
		return err
	}
	defer store.Close()

	for _, dev := range devices {
		rec := inventory.Receiver{
			MAC:    dev.MAC,
			Model:  dev.Model,
			Host:   dev.Host,
			Port:   dev.Port,
			Region: dev.Region,
		}
		// Keep names learned earlier; discovery only refreshes identity.
		if old, err := store.Get(cmd.Context(), dev.MAC); err == nil {
			rec.Names = old.Names
		}
		if err := store.Put(cmd.Context(), rec); err != nil {
			return err
		}
	}
	cli.PrintSuccess("Saved %d receiver(s)", len(devices))
	return nil
}
