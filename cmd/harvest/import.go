package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/harvest/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-import papers from a CSV, JSON, or BibTeX file",
	Long: `Import parses a file of papers, validates every row, and shows a preview of
valid rows and row errors. After confirmation the valid rows are submitted
to the server in one batch; rows with errors are skipped.

The format is taken from the file extension unless --format is given. Use
"harvest import template" for a CSV file with every supported column.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the CSV import template",
	RunE:  runImportTemplate,
}

func init() {
	importCmd.Flags().String("format", "", "file format: csv, json, bibtex (default from extension)")
	importCmd.Flags().Bool("dry-run", false, "validate and preview without importing")
	importCmd.Flags().BoolP("yes", "y", false, "import without asking for confirmation")
	importCmd.Flags().Int("preview", 10, "number of rows to show in the preview")

	importTemplateCmd.Flags().StringP("output", "o", importer.TemplateFileName, "output file, or - for stdout")

	importCmd.AddCommand(importTemplateCmd)
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	formatName, _ := cmd.Flags().GetString("format")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	previewRows, _ := cmd.Flags().GetInt("preview")

	format, err := importer.DetectFormat(path)
	if formatName != "" {
		format, err = importer.ParseFormat(formatName)
	}
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg := loadConfig()
	session := importer.NewSession(newClient(cfg.API),
		importer.WithLogger(logger.Named("import")),
		importer.WithProgress(progressPrinter(os.Stderr)),
	)

	if err := session.LoadAs(path, format, f); err != nil {
		for _, msg := range session.Snapshot().Messages {
			fmt.Fprintln(os.Stderr, msg)
		}
		return fmt.Errorf("could not read %s", path)
	}

	snap := session.Snapshot()
	writePreview(os.Stdout, snap, previewRows)
	if snap.Report.ValidCount() == 0 {
		return errors.New(importer.MsgNoValidRows)
	}
	if dryRun {
		return nil
	}
	if !yes && !confirm(os.Stdin, os.Stdout, fmt.Sprintf("Import %d paper(s)?", snap.Report.ValidCount())) {
		fmt.Println("Import cancelled.")
		return nil
	}

	ctx, cancel := requestContext(cmd, cfg.API.Timeout)
	defer cancel()

	res, err := session.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)
	writeResult(os.Stdout, res)
	if res.Outcome() == importer.OutcomeFailure {
		if res.Err != nil {
			return userError(res.Err)
		}
		return errors.New("no papers were imported")
	}
	return nil
}

// writePreview shows the file summary, file-level problems, the first
// rows, and every row error.
func writePreview(w io.Writer, snap importer.Snapshot, rows int) {
	rep := snap.Report
	fmt.Fprintf(w, "%s (%s): %d row(s), %d valid, %d with errors\n",
		snap.FileName, snap.Format, rep.Rows, rep.ValidCount(), len(rep.RowErrors))
	for _, msg := range snap.Messages {
		fmt.Fprintf(w, "  ! %s\n", msg)
	}

	if n := min(rows, len(snap.Rows)); n > 0 {
		fmt.Fprintf(w, "\n%-5s  %-6s  %-50s  %-12s  %s\n", "Row", "Status", "Title", "Published", "Journal")
		fmt.Fprintln(w, strings.Repeat("-", 100))
		for i := 0; i < n; i++ {
			row := snap.Rows[i]
			status := "ok"
			if !rep.Valid(i) {
				status = "error"
			}
			fmt.Fprintf(w, "%-5d  %-6s  %-50s  %-12s  %s\n",
				i+1, status, clip(row.Get("title"), 50), row.Get("publication_date"), clip(row.Get("journal"), 30))
		}
		if n < len(snap.Rows) {
			fmt.Fprintf(w, "... %d more row(s)\n", len(snap.Rows)-n)
		}
	}

	if len(rep.RowErrors) > 0 {
		fmt.Fprintln(w, "\nRow errors:")
		for _, re := range rep.RowErrors {
			fmt.Fprintf(w, "  row %d: %s\n", re.Index+1, strings.Join(re.Errors, "; "))
		}
	}
	fmt.Fprintln(w)
}

func writeResult(w io.Writer, res importer.Result) {
	switch res.Outcome() {
	case importer.OutcomeSuccess:
		fmt.Fprintf(w, "Imported %d paper(s).\n", res.SuccessCount)
	case importer.OutcomePartial:
		fmt.Fprintf(w, "Imported %d paper(s); %d failed.\n", res.SuccessCount, res.ErrorCount)
	default:
		fmt.Fprintln(w, "Import failed.")
	}
	if res.Skipped > 0 {
		fmt.Fprintf(w, "%d row(s) were skipped for validation errors.\n", res.Skipped)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(w, "  paper %d %q: %v\n", e.Index+1, e.Title, e.Errors)
	}
}

func progressPrinter(w io.Writer) func(sent, total int64) {
	return func(sent, total int64) {
		if total > 0 {
			fmt.Fprintf(w, "\rUploading... %3d%%", min(sent*100/total, 99))
		}
	}
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func runImportTemplate(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "-" {
		return importer.WriteTemplate(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := importer.WriteTemplate(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote import template", zap.String("path", output))
	fmt.Printf("Wrote %s\n", output)
	return nil
}
