package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ryotapoi/vaultpub/internal/core"
)

func runSync(args []string) error {
	fs := pflag.NewFlagSet("sync", pflag.ContinueOnError)
	root := fs.String("root", ".", "workspace root directory")
	vault := fs.String("vault", "", "vault directory (overrides VAULT_PATH)")
	allowExisting := fs.Bool("allow-existing-content", false, "keep existing content when no vault is configured")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	logger, err := env.logger()
	if err != nil {
		return err
	}
	cfg, err := core.LoadConfig(*root)
	if err != nil {
		return err
	}

	vaultPath := env.VaultPath
	if *vault != "" {
		vaultPath = *vault
	}

	result, err := core.Sync(core.SyncOptions{
		VaultPath:      vaultPath,
		PublishSubpath: env.publishSubpath(cfg),
		ContentDir:     workspacePath(*root, core.ContentDirName),
		ManifestPath:   core.ManifestPath(*root),
		AllowExisting:  *allowExisting,
		Config:         cfg,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, result.String())
	if len(result.Unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "hint: %d attachment links were left unresolved; run 'vaultpub report --fields unresolved'\n", len(result.Unresolved))
	}
	return nil
}
