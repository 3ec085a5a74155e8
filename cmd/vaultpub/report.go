package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/ryotapoi/vaultpub/internal/core"
)

func runReport(args []string) error {
	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	root := fs.String("root", ".", "workspace root directory")
	format := fs.String("format", "text", "output format (json or text)")
	fields := fs.String("fields", "", "comma-separated fields to output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := validateFormat(*format); err != nil {
		return err
	}

	fieldList := parseFields(*fields)
	if err := validateFields(fieldList, core.ValidReportFields, "report"); err != nil {
		return err
	}

	result, err := core.Report(core.ManifestPath(*root), core.ReportOptions{Fields: fieldList})
	if err != nil {
		return err
	}

	switch *format {
	case "json":
		return printReportJSON(os.Stdout, result, fieldList)
	default:
		return printReportText(os.Stdout, result, fieldList)
	}
}
