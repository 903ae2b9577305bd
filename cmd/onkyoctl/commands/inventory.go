package commands

import (
	"log/slog"

	"github.com/andyrak/onkyo-ng/pkg/cli"
	"github.com/andyrak/onkyo-ng/pkg/inventory"
)

// openInventory opens the on-disk receiver inventory under the app's
// data directory.
func openInventory() (*inventory.Store, error) {
	paths, err := cli.NewPaths(appName)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureDataDir(); err != nil {
		return nil, err
	}
	return inventory.Open(inventory.Options{
		Dir:    paths.DataPath("inventory"),
		Logger: slog.Default(),
	})
}
