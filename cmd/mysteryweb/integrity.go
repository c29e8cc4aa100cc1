package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"mysteryweb/internal/traversal"
	"mysteryweb/internal/validate"
)

func integrityCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "integrity",
		Aliases: []string{"validate"},
		Short:   "Check the dataset for broken references and structural problems",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntegrity(cmd, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func runIntegrity(cmd *cobra.Command, asJSON bool) error {
	ctx := cmd.Context()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	data, err := s.src.Load(ctx)
	if err != nil {
		return err
	}
	report, err := validate.Run(ctx, data, validate.Options{Engine: traversal.New(s.log), Log: s.log})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, "", report); err != nil {
			return err
		}
	} else {
		printReport(out, report)
	}

	if report.HasErrors() {
		return fmt.Errorf("integrity check found errors")
	}
	return nil
}

func printReport(out io.Writer, report *validate.Report) {
	score := report.Integrity.IntegrityScore
	scoreColor := color.New(color.FgGreen, color.Bold)
	switch {
	case score < 70:
		scoreColor = color.New(color.FgRed, color.Bold)
	case score < 90:
		scoreColor = color.New(color.FgYellow, color.Bold)
	}
	scoreColor.Fprintf(out, "Integrity score: %d%%", score)
	fmt.Fprintf(out, " (%d of %d references broken)\n", report.Integrity.BrokenRelationships, report.Integrity.TotalRelationships)

	if len(report.Issues) == 0 {
		color.New(color.FgGreen).Fprintln(out, "No issues found.")
		return
	}

	errs := report.Count(validate.SeverityError)
	warns := report.Count(validate.SeverityWarn)
	if errs > 0 {
		fmt.Fprintln(out)
		color.New(color.FgRed, color.Bold).Fprintf(out, "Errors (%d):\n", errs)
		printIssues(out, report.Issues, validate.SeverityError, color.New(color.FgRed))
	}
	if warns > 0 {
		fmt.Fprintln(out)
		color.New(color.FgYellow, color.Bold).Fprintf(out, "Warnings (%d):\n", warns)
		printIssues(out, report.Issues, validate.SeverityWarn, color.New(color.FgYellow))
	}
}

func printIssues(out io.Writer, issues []validate.Issue, severity validate.Severity, c *color.Color) {
	for _, issue := range issues {
		if issue.Severity != severity {
			continue
		}
		location := issue.Entity
		if issue.Type != "" {
			location = fmt.Sprintf("%s [%s]", issue.Entity, issue.Type)
		}
		fmt.Fprint(out, "  - ")
		c.Fprint(out, location)
		fmt.Fprintf(out, ": %s (%s)\n", issue.Message, issue.Code)
	}
}
