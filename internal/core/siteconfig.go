package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ryotapoi/vaultpub/internal/logging"
)

// LocalBaseURL is used for development builds and when no site URL is set.
const LocalBaseURL = "localhost"

// ComputeBaseURL derives the site's base URL (host plus path, no scheme) from
// the site URL and an optional repository name appended as the last segment.
func ComputeBaseURL(siteURL, repoName string) (string, error) {
	siteURL = strings.TrimSpace(siteURL)
	repoName = strings.TrimSpace(repoName)
	if siteURL == "" {
		return LocalBaseURL, nil
	}
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("SITE_URL must be a valid URL (example: https://username.github.io). Received: %s", siteURL)
	}

	pathname := strings.TrimRight(u.EscapedPath(), "/")
	if repoName != "" {
		suffix := "/" + repoName
		if pathname == "" {
			pathname = suffix
		} else if !strings.HasSuffix(pathname, suffix) {
			pathname += suffix
		}
	}
	return u.Host + pathname, nil
}

// siteField is one string field substituted in the site config file.
type siteField struct {
	name string
	re   *regexp.Regexp
}

var siteFields = []siteField{
	{"pageTitle", regexp.MustCompile("pageTitle:\\s*[\"'`][^\"'`]*[\"'`]")},
	{"baseUrl", regexp.MustCompile("baseUrl:\\s*[\"'`][^\"'`]*[\"'`]")},
	{"description", regexp.MustCompile("description:\\s*[\"'`][^\"'`]*[\"'`]")},
}

// RenderOptions configures RenderSiteConfig.
type RenderOptions struct {
	SiteConfigPath string
	Config         Config
	SiteURL        string
	RepoName       string
	Dev            bool
	Logger         *logging.Logger
}

// RenderResult reports the values written to the site config.
type RenderResult struct {
	Title       string
	BaseURL     string
	Description string
	Missing     []string // fields not found in the site config
}

// RenderSiteConfig substitutes title, base URL and description into the site
// config file. A field that cannot be found is reported and left alone.
func RenderSiteConfig(opts RenderOptions) (*RenderResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	source, err := os.ReadFile(opts.SiteConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("site config not found: %s (initialize the site generator first)", opts.SiteConfigPath)
		}
		return nil, err
	}

	baseURL := LocalBaseURL
	if !opts.Dev {
		baseURL, err = ComputeBaseURL(opts.SiteURL, opts.RepoName)
		if err != nil {
			return nil, err
		}
	}
	result := &RenderResult{
		Title:       opts.Config.SiteTitle(),
		BaseURL:     baseURL,
		Description: opts.Config.SiteDescription(),
	}
	values := map[string]string{
		"pageTitle":   result.Title,
		"baseUrl":     result.BaseURL,
		"description": result.Description,
	}

	out := string(source)
	for _, f := range siteFields {
		replaced, ok := replaceFirst(out, f.re, f.name+": "+quoteJSON(values[f.name]))
		if !ok {
			logger.ConfigFieldMissing(f.name, opts.SiteConfigPath)
			result.Missing = append(result.Missing, f.name)
			continue
		}
		out = replaced
	}

	if err := atomic.WriteFile(opts.SiteConfigPath, strings.NewReader(out)); err != nil {
		return nil, err
	}
	logger.SiteConfigRendered(result.Title, result.BaseURL)
	return result, nil
}

// replaceFirst replaces the first match of re with the literal replacement.
func replaceFirst(s string, re *regexp.Regexp, replacement string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + replacement + s[loc[1]:], true
}

// quoteJSON returns s as a JSON string literal without HTML escaping.
func quoteJSON(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
