package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/bridgelog/db"
	"github.com/tfkr-ae/bridgelog/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the activity sink server",
	Long: `Serves the activity API on the configured address and stores every
received entry in the local database:

  POST /api/activity        store one entry
  GET  /api/activity        list entries (user_id, action, level, session_id, limit)
  GET  /api/activity/stats  entry counts
  GET  /api/health          liveness`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default: listen_addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	addr := listenAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s : %w", addr, err)
	}

	return server.New(repo, logger).Serve(ctx, ln)
}
