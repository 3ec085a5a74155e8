package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ryotapoi/vaultpub/internal/core"
)

func runSnapshot(args []string) error {
	fs := pflag.NewFlagSet("snapshot", pflag.ContinueOnError)
	root := fs.String("root", ".", "workspace root directory")
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

	snapshotDir := workspacePath(*root, core.SnapshotDirName)
	n, err := core.Snapshot(workspacePath(*root, core.ContentDirName), snapshotDir)
	if err != nil {
		return err
	}
	logger.SnapshotUpdated(n, snapshotDir)
	fmt.Fprintf(os.Stdout, "Updated %s from %s (%d files).\n", core.SnapshotDirName, core.ContentDirName, n)
	return nil
}
