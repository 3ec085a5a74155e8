package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ryotapoi/vaultpub/internal/core"
)

func runRenderConfig(args []string) error {
	fs := pflag.NewFlagSet("render-config", pflag.ContinueOnError)
	root := fs.String("root", ".", "workspace root directory")
	dev := fs.Bool("dev", false, "use localhost as the base URL")
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

	result, err := core.RenderSiteConfig(core.RenderOptions{
		SiteConfigPath: workspacePath(*root, core.SiteConfigFileName),
		Config:         cfg,
		SiteURL:        env.SiteURL,
		RepoName:       env.RepoName,
		Dev:            *dev,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Updated site config with title %q and baseUrl %q.\n", result.Title, result.BaseURL)
	return nil
}
