package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "sync":
		err = runSync(os.Args[2:])
	case "rewrite":
		err = runRewrite(os.Args[2:])
	case "render-config":
		err = runRenderConfig(os.Args[2:])
	case "snapshot":
		err = runSnapshot(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	case "--version":
		printVersion(os.Stdout)
		return
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion(w io.Writer) {
	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	fmt.Fprintf(w, "vaultpub version %s\n", v)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: vaultpub <command> [options]

Publish Commands:
  sync           Republish the vault into the site content tree
  render-config  Write title, base URL and description into the site config
  snapshot       Copy the site content tree into content-snapshot/

Inspection Commands:
  rewrite    Print one note as it would be published
  report     Show the manifest of the last sync

Environment:
  VAULT_PATH             vault location (required for sync)
  VAULT_PUBLISH_SUBPATH  overrides publishSubpath when set
  SITE_URL, REPO_NAME    base URL inputs for render-config
  VAULTPUB_LOG_LEVEL     debug, info, warn or error

Run 'vaultpub <command> --help' for command-specific help.
Use 'vaultpub --version' for version information.
`)
}
