package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the configuration document at the workspace root.
const ConfigFileName = "vaultpub.yaml"

// Site defaults used when the config leaves them out.
const (
	DefaultSiteTitle       = "My Obsidian Wiki"
	DefaultSiteDescription = "Published from an Obsidian vault using Quartz"
)

// ErrConfigNotFound is returned when the configuration document is missing.
var ErrConfigNotFound = errors.New("config file not found")

// Config represents the vaultpub.yaml configuration file.
type Config struct {
	PublishSubpath        string     `yaml:"publishSubpath"`
	IgnorePatterns        []string   `yaml:"ignorePatterns"`
	AttachmentsFolders    []string   `yaml:"attachmentsFolders"`
	AttachmentResolution  string     `yaml:"attachmentResolution"`
	IgnoreCaseInsensitive *bool      `yaml:"ignoreCaseInsensitive"`
	LinkRewriteRules      []RuleSpec `yaml:"linkRewriteRules"`
	Site                  SiteConfig `yaml:"site"`
}

// SiteConfig holds the fields substituted into the site configuration file.
// nil means the key was absent; an explicit empty string is kept.
type SiteConfig struct {
	Title       *string `yaml:"title"`
	Description *string `yaml:"description"`
}

// LoadConfig reads vaultpub.yaml from root. An empty document yields the zero
// Config, whose accessors supply defaults.
func LoadConfig(root string) (Config, error) {
	p := filepath.Join(root, ConfigFileName)
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, p)
		}
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes a configuration document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	switch cfg.AttachmentResolution {
	case "", ResolutionShallowest, ResolutionUnique:
	default:
		return Config{}, fmt.Errorf("%s: unknown attachmentResolution %q (must be %s or %s)",
			ConfigFileName, cfg.AttachmentResolution, ResolutionShallowest, ResolutionUnique)
	}
	return cfg, nil
}

// AttachmentFolders returns the configured folder names. An explicit empty
// list disables attachment indexing; an absent key means the default folder.
func (c Config) AttachmentFolders() []string {
	if c.AttachmentsFolders == nil {
		return []string{DefaultAttachmentFolder}
	}
	return c.AttachmentsFolders
}

// IgnoreOptions returns matching options, defaulting to the host convention.
func (c Config) IgnoreOptions() IgnoreOptions {
	opts := DefaultIgnoreOptions()
	if c.IgnoreCaseInsensitive != nil {
		opts.CaseInsensitive = *c.IgnoreCaseInsensitive
	}
	return opts
}

// SiteTitle returns site.title, or the default when it is absent.
func (c Config) SiteTitle() string {
	if c.Site.Title == nil {
		return DefaultSiteTitle
	}
	return *c.Site.Title
}

// SiteDescription returns site.description, or the default when it is absent.
func (c Config) SiteDescription() string {
	if c.Site.Description == nil {
		return DefaultSiteDescription
	}
	return *c.Site.Description
}

// UnmarshalYAML never fails: entries that are not mappings, or whose match or
// replace are not string scalars, decode as invalid specs and are dropped at
// compile time.
func (r *RuleSpec) UnmarshalYAML(value *yaml.Node) error {
	*r = RuleSpec{}
	if value.Kind != yaml.MappingNode {
		return nil
	}
	var hasMatch, hasReplace bool
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if val.Kind != yaml.ScalarNode || val.Tag != "!!str" {
			continue
		}
		switch key.Value {
		case "match":
			r.Match, hasMatch = val.Value, true
		case "replace":
			r.Replace, hasReplace = val.Value, true
		case "flags":
			r.Flags = val.Value
		}
	}
	r.Valid = hasMatch && hasReplace
	return nil
}
