package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/ryotapoi/vaultpub/internal/core"
)

func runRewrite(args []string) error {
	fs := pflag.NewFlagSet("rewrite", pflag.ContinueOnError)
	root := fs.String("root", ".", "workspace root directory")
	vault := fs.String("vault", "", "vault directory (overrides VAULT_PATH)")
	file := fs.String("file", "", "note to rewrite (relative to the publish root)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	env, err := loadEnvironment()
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
	if vaultPath == "" {
		return core.ErrVaultPathRequired
	}

	result, err := core.RewriteDocument(vaultPath, env.publishSubpath(cfg), *file, cfg)
	if err != nil {
		return err
	}
	return printRewrite(os.Stdout, os.Stderr, result)
}

func printRewrite(out, diag io.Writer, r *core.RewriteResult) error {
	if _, err := io.WriteString(out, r.Text); err != nil {
		return err
	}
	for _, ref := range r.Unresolved {
		fmt.Fprintf(diag, "unresolved %s: %s\n", ref.Syntax, ref.Target)
	}
	return nil
}
