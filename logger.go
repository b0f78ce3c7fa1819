// Package bridgelog records StartupBridge activity events.
//
// A Logger delivers each event to a remote sink right away, retrying a few times
// with a linear delay. When the sink cannot be reached, or the connectivity
// source reports that the network is down, the entry goes into an in-memory
// offline queue and is mirrored into a bounded durable store. The queue is
// flushed in order when connectivity comes back. Recording never fails from the
// caller's point of view.
package bridgelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tfkr-ae/bridgelog/connectivity"
	"github.com/tfkr-ae/bridgelog/core"
	"github.com/tfkr-ae/bridgelog/domain"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Logger is the activity logger. Construct it once with New and share the pointer.
type Logger struct {
	sink         domain.Sink
	store        domain.KeyValueStore
	connectivity domain.ConnectivitySource
	mirror       *Mirror
	log          *zap.Logger

	maxRetries  int
	retryDelay  time.Duration
	mirrorLimit int
	now         func() time.Time

	sessionID  string
	userAgent  string
	urlFunc    func() string
	userIDFunc func() string

	mu      sync.Mutex
	offline bool
	queue   []*domain.Entry
	closed  bool

	flushMu     sync.Mutex // serializes flush passes
	wg          sync.WaitGroup
	unsubscribe func()
}

// New creates a Logger delivering to sink and mirroring undelivered entries into store.
func New(sink domain.Sink, store domain.KeyValueStore, options ...func(*Logger) error) (*Logger, error) {
	if sink == nil {
		return nil, errors.New("sink is required")
	}
	if store == nil {
		return nil, errors.New("local store is required")
	}

	l := &Logger{
		sink:        sink,
		store:       store,
		log:         zap.NewNop(),
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		mirrorLimit: DefaultMirrorLimit,
		now:         time.Now,
		userAgent:   DefaultUserAgent(),
	}
	for _, option := range options {
		if err := option(l); err != nil {
			return nil, fmt.Errorf("applying option on logger : %w", err)
		}
	}

	if l.sessionID == "" {
		l.sessionID = NewSessionID(l.now())
	}
	if l.connectivity == nil {
		l.connectivity = connectivity.NewMonitor(true)
	}
	l.mirror = NewMirror(l.store, l.mirrorLimit)

	l.offline = !l.connectivity.Online()
	l.unsubscribe = l.connectivity.OnConnectivityChange(l.handleConnectivity)
	return l, nil
}

// Record captures an activity event and hands it to the sink.
// The timestamp and ambient context are taken before Record returns. The
// returned channel is closed once the entry has been delivered, or queued and
// mirrored; callers may ignore it. Cancelling ctx does not cancel delivery.
func (l *Logger) Record(ctx context.Context, action string, data map[string]any, level domain.Level) <-chan struct{} {
	done := make(chan struct{})

	entry := l.newEntry(action, data, level)
	if entry == nil {
		close(done)
		return done
	}
	l.trace(entry)

	l.mu.Lock()
	if l.offline || l.closed {
		l.queue = append(l.queue, entry)
		l.mu.Unlock()
		l.mirrorEntry(entry)
		close(done)
		return done
	}
	l.wg.Add(1)
	l.mu.Unlock()

	deliveryCtx := context.WithoutCancel(ctx)
	go func() {
		defer l.wg.Done()
		defer close(done)

		if err := l.deliver(deliveryCtx, entry); err != nil {
			l.log.Warn("delivering entry failed, queued for retry",
				zap.String("id", entry.ID.String()),
				zap.String("action", entry.Action),
				zap.Error(err),
			)
			l.mirrorEntry(entry)
			l.enqueue(entry)
		}
	}()
	return done
}

func (l *Logger) newEntry(action string, data map[string]any, level domain.Level) *domain.Entry {
	if !level.Valid() {
		l.log.Warn("unknown level, recording as INFO", zap.String("level", string(level)), zap.String("action", action))
		level = domain.LevelInfo
	}

	data, err := core.SanitizeData(data)
	if err != nil {
		l.log.Warn("entry data replaced", zap.String("action", action), zap.Error(err))
	}

	entry, err := core.NewEntry(action, data, level,
		core.EntryWithTimestamp(l.now()),
		core.EntryWithContext(l.ambient()),
	)
	if err != nil {
		l.log.Warn("dropping entry", zap.String("action", action), zap.Error(err))
		return nil
	}
	return entry
}

func (l *Logger) ambient() domain.EntryContext {
	ctx := domain.EntryContext{
		UserAgent: l.userAgent,
		SessionID: l.sessionID,
	}
	if l.urlFunc != nil {
		ctx.URL = l.urlFunc()
	}
	if l.userIDFunc != nil {
		ctx.UserID = l.userIDFunc()
	}
	return ctx
}

// trace writes the entry to the console log at its own level.
func (l *Logger) trace(entry *domain.Entry) {
	msg := fmt.Sprintf("[%s] %s", entry.Level, entry.Action)
	fields := []zap.Field{
		zap.String("id", entry.ID.String()),
		zap.Any("data", entry.Data),
		zap.String("user_id", entry.Context.UserID),
		zap.String("session_id", entry.Context.SessionID),
	}

	switch entry.Level {
	case domain.LevelDebug:
		l.log.Debug(msg, fields...)
	case domain.LevelWarn:
		l.log.Warn(msg, fields...)
	case domain.LevelError:
		l.log.Error(msg, fields...)
	default:
		l.log.Info(msg, fields...)
	}
}

// linearBackoff allows maxRetries retries, the n-th one after delay * n.
func linearBackoff(maxRetries int, delay time.Duration) retry.Backoff {
	var attempt time.Duration
	return retry.WithMaxRetries(uint64(maxRetries), retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return delay * attempt, false
	}))
}

// deliver sends entry to the sink, retrying up to maxRetries times.
func (l *Logger) deliver(ctx context.Context, entry *domain.Entry) error {
	return retry.Do(ctx, linearBackoff(l.maxRetries, l.retryDelay), func(ctx context.Context) error {
		if err := l.sink.Deliver(ctx, entry); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (l *Logger) enqueue(entry *domain.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.queue = append(l.queue, entry)
}

func (l *Logger) mirrorEntry(entry *domain.Entry) {
	if err := l.mirror.Append(entry); err != nil {
		l.log.Warn("mirroring entry to local store", zap.String("id", entry.ID.String()), zap.Error(err))
	}
}

func (l *Logger) handleConnectivity(online bool) {
	l.mu.Lock()
	wasOffline := l.offline
	l.offline = !online
	if !online || !wasOffline || l.closed {
		l.mu.Unlock()
		if !online && !wasOffline {
			l.log.Info("connectivity lost, queueing entries")
		}
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	l.log.Info("connectivity restored, flushing offline queue")
	go func() {
		defer l.wg.Done()
		l.Flush(context.Background())
	}()
}

// Flush delivers every queued entry in enqueue order and returns how many were delivered.
// The queue is swapped out before delivery starts, so entries queued meanwhile wait
// for the next flush. Entries that still fail go back on the queue.
func (l *Logger) Flush(ctx context.Context) int {
	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.mu.Lock()
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	if len(pending) == 0 {
		return 0
	}
	l.log.Info("flushing offline entries", zap.Int("count", len(pending)))

	delivered := 0
	for _, entry := range pending {
		if err := l.deliver(ctx, entry); err != nil {
			l.log.Warn("flushing entry failed", zap.String("id", entry.ID.String()), zap.Error(err))
			l.enqueue(entry)
			continue
		}
		delivered++
	}
	return delivered
}

// Online reports the logger's view of connectivity.
func (l *Logger) Online() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.offline
}

// Queued returns a copy of the offline queue.
func (l *Logger) Queued() []*domain.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.Entry(nil), l.queue...)
}

// SessionID returns the session identifier stamped on every entry.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Close stops listening for connectivity changes and waits for in-flight
// records and flushes. Entries recorded after Close are queued and mirrored only.
func (l *Logger) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.unsubscribe()

	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for pending records : %w", ctx.Err())
	}
}
