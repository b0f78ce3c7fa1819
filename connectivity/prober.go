package connectivity

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Prober checks a health URL at an interval and drives a Monitor with the result.
type Prober struct {
	url      string
	interval time.Duration
	client   *http.Client
	monitor  *Monitor
	log      *zap.Logger
}

// DefaultProbeInterval is used when NewProber is given a non-positive interval.
const DefaultProbeInterval = 15 * time.Second

// NewProber returns a Prober for url. A nil client gets a 5 second timeout.
func NewProber(url string, interval time.Duration, client *http.Client, monitor *Monitor, log *zap.Logger) *Prober {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{
		url:      url,
		interval: interval,
		client:   client,
		monitor:  monitor,
		log:      log,
	}
}

// Probe performs one health check, updates the monitor and returns the result.
// A check cut short by ctx leaves the monitor as it was and reports its state.
func (p *Prober) Probe(ctx context.Context) bool {
	online := p.check(ctx)
	if ctx.Err() != nil {
		return p.monitor.Online()
	}
	p.monitor.SetOnline(online)
	return online
}

func (p *Prober) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.log.Warn("creating probe request", zap.String("url", p.url), zap.Error(err))
		return false
	}
	res, err := p.client.Do(req)
	if err != nil {
		p.log.Debug("probe failed", zap.String("url", p.url), zap.Error(err))
		return false
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	return res.StatusCode >= 200 && res.StatusCode <= 299
}

// Run probes immediately and then every interval until ctx is done.
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			before := p.monitor.Online()
			if after := p.Probe(ctx); after != before {
				p.log.Info("connectivity changed", zap.String("url", p.url), zap.Bool("online", after))
			}
		}
	}
}
