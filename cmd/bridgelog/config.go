package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change config.yaml",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Update one key in config.yaml",
	Long: `Updates one key in config.yaml. Durations take Go syntax:

  bridgelog config set retry_delay 500ms
  bridgelog config set sink_url https://sink.startupbridge.app`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", cfg.Path())
	fmt.Fprintf(tw, "db_path\t%s\n", cfg.DBPath)
	fmt.Fprintf(tw, "sink_url\t%s\n", cfg.SinkURL)
	fmt.Fprintf(tw, "listen_addr\t%s\n", cfg.ListenAddr)
	fmt.Fprintf(tw, "retry_delay\t%s\n", cfg.RetryDelay)
	fmt.Fprintf(tw, "max_retries\t%d\n", cfg.MaxRetries)
	fmt.Fprintf(tw, "mirror_limit\t%d\n", cfg.MirrorLimit)
	fmt.Fprintf(tw, "probe_interval\t%s\n", cfg.ProbeInterval)
	fmt.Fprintf(tw, "http_timeout\t%s\n", cfg.HTTPTimeout)
	fmt.Fprintf(tw, "log_level\t%s\n", cfg.LogLevel)
	return tw.Flush()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
	return nil
}
