package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/bridgelog"
	"github.com/tfkr-ae/bridgelog/db"
)

var (
	exportFormat     string
	exportCompressed bool
	exportOut        string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect the local mirror of recent entries",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mirrored entries, oldest first",
	RunE:  runLogsList,
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every mirrored entry",
	RunE:  runLogsClear,
}

var logsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the mirror to startupbridge_logs_<date>.<format>",
	RunE:  runLogsExport,
}

func init() {
	logsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or html")
	logsExportCmd.Flags().BoolVar(&exportCompressed, "brotli", false, "Compress the export with brotli")
	logsExportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "Directory to write the export to")

	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsClearCmd)
	logsCmd.AddCommand(logsExportCmd)
}

func openMirror() (*bridgelog.Mirror, io.Closer, error) {
	repo, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return bridgelog.NewMirror(repo, cfg.MirrorLimit), repo, nil
}

func runLogsList(cmd *cobra.Command, args []string) error {
	mirror, closer, err := openMirror()
	if err != nil {
		return err
	}
	defer closer.Close()

	entries, err := mirror.Entries()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLEVEL\tACTION\tUSER\tSESSION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Format(time.RFC3339), e.Level, e.Action, e.Context.UserID, e.Context.SessionID)
	}
	return tw.Flush()
}

func runLogsClear(cmd *cobra.Command, args []string) error {
	mirror, closer, err := openMirror()
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := mirror.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "local logs cleared")
	return nil
}

func runLogsExport(cmd *cobra.Command, args []string) error {
	format, err := bridgelog.ParseExportFormat(exportFormat)
	if err != nil {
		return err
	}

	mirror, closer, err := openMirror()
	if err != nil {
		return err
	}
	defer closer.Close()

	entries, err := mirror.Entries()
	if err != nil {
		return err
	}

	path := filepath.Join(exportOut, bridgelog.ExportFileName(time.Now(), format, exportCompressed))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file : %w", err)
	}
	defer f.Close()

	var w io.WriteCloser = f
	if exportCompressed {
		w = bridgelog.NewCompressedWriter(f)
	}
	if err := bridgelog.WriteExport(w, entries, format); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing export file : %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", len(entries), path)
	return nil
}
