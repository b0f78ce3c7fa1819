package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/bridgelog"
	"github.com/tfkr-ae/bridgelog/connectivity"
	"github.com/tfkr-ae/bridgelog/db"
	"github.com/tfkr-ae/bridgelog/domain"
	"github.com/tfkr-ae/bridgelog/server"
	"github.com/tfkr-ae/bridgelog/sink"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	recordLevel  string
	recordUser   string
	recordURL    string
	recordWait   time.Duration
	recordTarget string
)

var errQueueDrained = errors.New("queue drained")

var recordCmd = &cobra.Command{
	Use:   "record ACTION [key=value...]",
	Short: "Record one activity event",
	Long: `Records one activity event and delivers it to the sink at sink_url.

Values are parsed as JSON when possible, so count=3 is a number and
ok=true a boolean; anything else is kept as a string. When the sink is
unreachable the event is mirrored locally; with --wait the command keeps
probing the sink and delivers the queued event once it comes back.

Example:
  bridgelog record loan_offer_posted amount=5000 currency=USD --user u-42`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordLevel, "level", "l", "INFO", "Entry level: DEBUG, INFO, WARN or ERROR")
	recordCmd.Flags().StringVar(&recordUser, "user", "", "User id (default: anonymous)")
	recordCmd.Flags().StringVar(&recordURL, "url", "", "Page the event happened on")
	recordCmd.Flags().DurationVar(&recordWait, "wait", 0, "How long to wait for the sink to come back when offline")
	recordCmd.Flags().StringVar(&recordTarget, "sink", "", "Sink base URL (default: sink_url from config)")
}

// parseFields turns key=value arguments into entry data.
func parseFields(args []string) (map[string]any, error) {
	data := make(map[string]any, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q should be key=value", arg)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		data[key] = value
	}
	return data, nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level, err := domain.ParseLevel(recordLevel)
	if err != nil {
		return err
	}
	data, err := parseFields(args[1:])
	if err != nil {
		return err
	}

	repo, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	target := recordTarget
	if target == "" {
		target = cfg.SinkURL
	}
	target = strings.TrimRight(target, "/")
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	monitor := connectivity.NewMonitor(false)
	prober := connectivity.NewProber(target+server.HealthPath, cfg.ProbeInterval, client, monitor, logger)
	prober.Probe(ctx)

	l, err := bridgelog.New(sink.NewHTTPSink(target, client, cfg.HTTPTimeout), repo,
		bridgelog.WithConfig(cfg),
		bridgelog.WithZap(logger),
		bridgelog.WithConnectivity(monitor),
		bridgelog.WithUserIDFunc(func() string { return recordUser }),
		bridgelog.WithURLFunc(func() string { return recordURL }),
	)
	if err != nil {
		return fmt.Errorf("creating logger : %w", err)
	}
	defer l.RecoverPanic(ctx)

	<-l.Record(ctx, args[0], data, level)

	if recordWait > 0 && len(l.Queued()) > 0 {
		if err := waitForDelivery(ctx, l, prober, recordWait); err != nil {
			logger.Warn("gave up waiting for the sink", zap.Error(err))
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), deliveryBudget(cfg))
	defer cancel()
	if err := l.Close(closeCtx); err != nil {
		return fmt.Errorf("closing logger : %w", err)
	}

	if queued := len(l.Queued()); queued > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "sink unreachable, %d entry kept in the local mirror\n", queued)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "delivered")
	return nil
}

// deliveryBudget is the longest one entry can take to be delivered or given up on:
// every attempt timing out plus the linear delays between them.
func deliveryBudget(cfg *bridgelog.Config) time.Duration {
	retries := time.Duration(cfg.MaxRetries)
	return (retries+1)*cfg.HTTPTimeout + cfg.RetryDelay*retries*(retries+1)/2 + time.Second
}

// waitForDelivery probes the sink until the logger's queue has been flushed or wait expires.
// Once online it runs a flush itself, which waits for any flush already in progress.
func waitForDelivery(ctx context.Context, l *bridgelog.Logger, prober *connectivity.Prober, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return prober.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if !l.Online() {
					continue
				}
				l.Flush(gctx)
				if len(l.Queued()) == 0 {
					return errQueueDrained
				}
			}
		}
	})

	if err := g.Wait(); !errors.Is(err, errQueueDrained) {
		return err
	}
	return nil
}
