package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ryotapoi/vaultpub/internal/core"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// parseFields splits a comma-separated field string into a slice.
// Returns nil for empty input.
func parseFields(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// validateFormat checks that format is "json" or "text".
func validateFormat(format string) error {
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %q (must be json or text)", format)
	}
	return nil
}

// validateFields checks that all fields are in the valid set.
// name is used in the error message (e.g. "report").
func validateFields(fields []string, valid map[string]bool, name string) error {
	for _, f := range fields {
		if !valid[f] {
			return fmt.Errorf("unknown %s field: %s", name, f)
		}
	}
	return nil
}

// fieldSet returns a set of fields to show. If fields is nil/empty, all valid fields are shown.
func fieldSet(fields []string, valid map[string]bool) map[string]bool {
	if len(fields) == 0 {
		all := make(map[string]bool)
		for k := range valid {
			all[k] = true
		}
		return all
	}
	m := make(map[string]bool, len(fields))
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// --- Report output ---

type reportJSONRun struct {
	ID         string `json:"id"`
	SourceRoot string `json:"source_root"`
	ContentDir string `json:"content_dir"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
}

type reportJSONUnresolved struct {
	Source string `json:"source"`
	Syntax string `json:"syntax"`
	Target string `json:"target"`
}

func printReportJSON(w io.Writer, r *core.ReportResult, fields []string) error {
	show := fieldSet(fields, core.ValidReportFields)
	m := make(map[string]any)
	if show["run"] && r.Run != nil {
		m["run"] = reportJSONRun{
			ID:         r.Run.ID,
			SourceRoot: r.Run.SourceRoot,
			ContentDir: r.Run.ContentDir,
			StartedAt:  r.Run.StartedAt.UTC().Format(time.RFC3339),
			FinishedAt: r.Run.FinishedAt.UTC().Format(time.RFC3339),
		}
	}
	if show["files_total"] {
		m["files_total"] = r.FilesTotal
	}
	if show["rewritten"] {
		m["rewritten"] = r.Rewritten
	}
	if show["copied"] {
		m["copied"] = r.Copied
	}
	if show["unresolved"] {
		refs := make([]reportJSONUnresolved, len(r.Unresolved))
		for i, ref := range r.Unresolved {
			refs[i] = reportJSONUnresolved{Source: ref.SourcePath, Syntax: ref.Syntax, Target: ref.Target}
		}
		m["unresolved"] = refs
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

func printReportText(w io.Writer, r *core.ReportResult, fields []string) error {
	show := fieldSet(fields, core.ValidReportFields)
	if show["run"] && r.Run != nil {
		fmt.Fprintln(w, headingStyle.Render("run"))
		fmt.Fprintf(w, "  id: %s\n", r.Run.ID)
		fmt.Fprintf(w, "  source: %s\n", r.Run.SourceRoot)
		fmt.Fprintf(w, "  dest: %s\n", r.Run.ContentDir)
		fmt.Fprintf(w, "  finished: %s\n", r.Run.FinishedAt.Format(time.DateTime))
	}
	if show["files_total"] {
		fmt.Fprintf(w, "files_total: %d\n", r.FilesTotal)
	}
	if show["rewritten"] {
		fmt.Fprintf(w, "rewritten: %d\n", r.Rewritten)
	}
	if show["copied"] {
		fmt.Fprintf(w, "copied: %d\n", r.Copied)
	}
	if show["unresolved"] && len(r.Unresolved) > 0 {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("unresolved (%d)", len(r.Unresolved))))
		for _, ref := range r.Unresolved {
			fmt.Fprintf(w, "  %s: %s (%s)\n", ref.SourcePath, ref.Target, ref.Syntax)
		}
	}
	return nil
}
