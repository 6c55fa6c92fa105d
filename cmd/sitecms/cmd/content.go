package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/architected-by-miguel/sitecms/content"
)

type checkReport struct {
	Dir   string      `json:"dir"`
	Valid bool        `json:"valid"`
	Files []fileCheck `json:"files"`
}

type fileCheck struct {
	Path   string `json:"path"`
	Status string `json:"status"` // "pass", "fail"
	Detail string `json:"detail,omitempty"`
}

var errContentInvalid = errors.New("content check failed")

func buildReport(dir string, results []content.FileResult) checkReport {
	report := checkReport{Dir: dir, Valid: true}
	for _, r := range results {
		if r.Err == nil {
			report.Files = append(report.Files, fileCheck{Path: r.Path, Status: "pass"})
			continue
		}
		report.Valid = false
		report.Files = append(report.Files, fileCheck{Path: r.Path, Status: "fail", Detail: r.Err.Error()})
	}
	return report
}

func printHumanReport(w io.Writer, report checkReport) {
	fmt.Fprintf(w, "Content check: %s\n", report.Dir)
	fmt.Fprintf(w, "Files:  %d\n\n", len(report.Files))

	failures := 0
	for _, f := range report.Files {
		if f.Status == "fail" {
			failures++
			fmt.Fprintf(w, "[FAIL] %s: %s\n", f.Path, f.Detail)
			continue
		}
		fmt.Fprintf(w, "[PASS] %s\n", f.Path)
	}

	fmt.Fprintln(w)
	if report.Valid {
		fmt.Fprintln(w, "Result: VALID")
	} else {
		fmt.Fprintf(w, "Result: INVALID (%d error(s))\n", failures)
	}
}

func printJSONReport(w io.Writer, report checkReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

var checkJSONOutput bool

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Local content tools",
	Long:  `Commands for working with a checkout of the site's content repository.`,
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate pages and documents in a content checkout",
	Long: `Validates content/pages/*.json against the page schemas and every
Markdown document under content/case-studies, content/philosophy and
content/deep-dive the way the site build reads them: typed frontmatter,
unique slugs, and for published case studies and deep dives the required
sections in order with a numeric impact.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(contentCmd)
	contentCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkJSONOutput, "json", false, "Output results as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	report := buildReport(dir, content.CheckFiles(os.DirFS(dir)))
	out := cmd.OutOrStdout()
	if checkJSONOutput {
		if err := printJSONReport(out, report); err != nil {
			return err
		}
	} else {
		printHumanReport(out, report)
	}

	if !report.Valid {
		return errContentInvalid
	}
	return nil
}
