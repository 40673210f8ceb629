// Package cli implements sheetswap-convert, the batch command-line front end
// to the same load, clean, project and export pipeline the web UI uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/sheetswap/internal/config"
	"github.com/JonMunkholm/sheetswap/internal/core"
	"github.com/JonMunkholm/sheetswap/internal/logging"
	"github.com/JonMunkholm/sheetswap/internal/web/templates"
	"github.com/a-h/templ"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

// ErrAllFailed is returned when no input file could be converted.
var ErrAllFailed = errors.New("no file could be converted")

// NewRootCmd creates the convert command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "sheetswap-convert [files...]",
		Short: "Clean and convert CSV and Excel files",
		Long: `sheetswap-convert loads each CSV or Excel file, optionally removes duplicate
rows, fills missing numeric values with the column mean and keeps a subset
of columns, then writes the result as CSV or Excel.

Settings are read from sheetswap.yaml, then SHEETSWAP_* environment
variables, then flags.`,
		Version:       Version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			format, err := core.ParseExportFormat(cfg.To)
			if err != nil {
				return err
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat))
			return run(cmd.Context(), cmd.OutOrStdout(), cfg, format, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (default: ./"+DefaultConfigFile+")")
	f.Bool("drop-duplicates", false, "remove duplicate rows")
	f.Bool("fill-missing", false, "fill missing numeric values with the column mean")
	f.StringSlice("columns", nil, "columns to keep, in order (default: all)")
	f.Bool("chart", false, "write a bar chart of the first two numeric columns next to each output")
	f.String("to", "csv", "output format (csv|excel)")
	f.StringP("out", "o", "converted", "output directory")
	f.Int("preview-rows", 5, "rows shown in the summary preview")
	f.String("log-level", "warn", "log level (debug|info|warn|error)")

	_ = cmd.RegisterFlagCompletionFunc("to", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "excel"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// Execute runs the convert command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func run(ctx context.Context, w io.Writer, cfg *Config, format core.ExportFormat, paths []string) error {
	appCfg := config.Default()
	appCfg.Upload.MaxFileSize = cfg.MaxFileSize
	appCfg.Preview.Rows = cfg.PreviewRows
	svc := core.NewService(appCfg, nil)

	if err := os.MkdirAll(cfg.Out, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	opts := core.Options{
		Clean: core.CleanOptions{
			DropDuplicates: cfg.DropDuplicates,
			FillMissing:    cfg.FillMissing,
		},
		Columns:    cfg.Columns,
		ColumnsSet: len(cfg.Columns) > 0,
		Visualize:  cfg.Chart,
		Export:     format,
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"File", "Rows In", "Rows Out", "Columns", "Output", "Status"})

	var notes []string
	failed := 0
	for i, path := range paths {
		out, res := convertFile(ctx, svc, i, path, cfg.Out, opts)
		for _, m := range res.Messages {
			notes = append(notes, fmt.Sprintf("%s: [%s] %s", res.Name, m.Level, m.Text))
		}
		if res.Failed() {
			failed++
			// Support code and suggested action for the failure.
			notes = append(notes, fmt.Sprintf("%s: %s", res.Name, core.FormatUserError(res.Err)))
			t.AppendRow(table.Row{res.Name, "-", "-", "-", "-", "error"})
			continue
		}
		t.AppendRow(table.Row{
			res.Name,
			res.LoadedRows,
			res.Table.NumRows(),
			res.Table.NumCols(),
			out,
			"ok",
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "converted", fmt.Sprintf("%d/%d", len(paths)-failed, len(paths))})
	t.Render()

	for _, n := range notes {
		fmt.Fprintln(w, n)
	}

	switch failed {
	case 0:
		fmt.Fprintln(w, "All files processed successfully!")
	case len(paths):
		return ErrAllFailed
	}
	return nil
}

// convertFile runs one file through the pipeline and writes the export,
// plus the chart when one was built. The returned result carries any
// failure as a message.
func convertFile(ctx context.Context, svc *core.Service, i int, path, outDir string, opts core.Options) (string, *core.FileResult) {
	name := filepath.Base(path)
	logger := logging.WithFields(ctx, "file", name)

	data, err := os.ReadFile(path)
	if err != nil {
		res := &core.FileResult{Index: i, Name: name, Err: err}
		res.Messages = append(res.Messages, core.Message{Level: core.LevelError, Text: err.Error()})
		return "", res
	}

	res := svc.Process(ctx, i, core.FileInput{Name: name, Data: data}, opts)
	if res.Failed() {
		logger.Warn("file could not be converted", "error", res.Err)
		return "", res
	}

	dl, err := svc.Export(res, opts.Export)
	if err != nil {
		res.Err = err
		res.Messages = append(res.Messages, core.Message{Level: core.LevelError, Text: "Error converting " + name + ": " + err.Error()})
		return "", res
	}

	out := filepath.Join(outDir, dl.Filename)
	if err := os.WriteFile(out, dl.Data, 0o644); err != nil {
		res.Err = err
		res.Messages = append(res.Messages, core.Message{Level: core.LevelError, Text: err.Error()})
		return "", res
	}
	res.Messages = append(res.Messages, core.Message{Level: core.LevelSuccess, Text: "File " + dl.Filename + " ready for download!"})
	logger.Info("file converted", "output", out, "bytes", len(dl.Data))

	if res.Chart != nil {
		chartPath := filepath.Join(outDir, strings.TrimSuffix(dl.Filename, filepath.Ext(dl.Filename))+".chart.html")
		if err := writeChart(ctx, chartPath, name, res.Chart); err != nil {
			logger.Warn("chart not written", "error", err)
		}
	}
	return out, res
}

func writeChart(ctx context.Context, path, title string, c *core.BarChart) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` + templ.EscapeString(title) +
		`</title></head><body><h1>Data Visualization for ` + templ.EscapeString(title) + `</h1>`
	if _, err := io.WriteString(f, head); err != nil {
		return err
	}
	if err := templates.BarChart(c).Render(ctx, f); err != nil {
		return err
	}
	_, err = io.WriteString(f, `</body></html>`)
	return err
}
