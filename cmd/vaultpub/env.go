package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/ryotapoi/vaultpub/internal/core"
	"github.com/ryotapoi/vaultpub/internal/logging"
)

// envKeys maps the environment variables vaultpub reads to koanf keys.
// Everything else in the environment is ignored.
var envKeys = map[string]string{
	"VAULT_PATH":            "vault_path",
	"VAULT_PUBLISH_SUBPATH": "publish_subpath",
	"SITE_URL":              "site_url",
	"REPO_NAME":             "repo_name",
	"VAULTPUB_LOG_LEVEL":    "log_level",
}

// environment holds the inputs read from environment variables.
type environment struct {
	VaultPath         string
	PublishSubpath    string
	PublishSubpathSet bool
	SiteURL           string
	RepoName          string
	LogLevel          string
}

func loadEnvironment() (environment, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return environment{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return environment{
		VaultPath:         strings.TrimSpace(k.String("vault_path")),
		PublishSubpath:    k.String("publish_subpath"),
		PublishSubpathSet: k.Exists("publish_subpath"),
		SiteURL:           strings.TrimSpace(k.String("site_url")),
		RepoName:          strings.TrimSpace(k.String("repo_name")),
		LogLevel:          k.String("log_level"),
	}, nil
}

// publishSubpath returns the environment override when set, even to empty,
// and the configured subpath otherwise.
func (e environment) publishSubpath(cfg core.Config) string {
	if e.PublishSubpathSet {
		return e.PublishSubpath
	}
	return cfg.PublishSubpath
}

func (e environment) logger() (*logging.Logger, error) {
	level, err := logging.ParseLevel(e.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid VAULTPUB_LOG_LEVEL: %w", err)
	}
	return logging.NewWithLevel(os.Stderr, level), nil
}

// workspacePath joins a slash-separated workspace path onto root.
func workspacePath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
