package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cardsets/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize card-set storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif none exists, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	var pinned string
	if a.flags.dataDir != "" {
		if pinned, err = paths.ResolveDataDir(a.flags.dataDir, ""); err != nil {
			return sysError(fmt.Errorf("resolve data dir: %w", err))
		}
	}
	if _, err := writeConfigIfMissing(configDir, pinned); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	// Pick up the file just written, or the one that was already there.
	if a.config, err = loadConfig(configDir); err != nil {
		return sysError(err)
	}
	dataDir, err := a.dataDir()
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	catalog, err := a.open(dataDir)
	if err != nil {
		return classify(fmt.Errorf("initialize storage: %w", err))
	}
	if err := catalog.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Card sets initialized in %s\n", dataDir)
	return nil
}
