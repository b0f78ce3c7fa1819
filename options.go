package bridgelog

import (
	"errors"
	"fmt"
	"time"

	"github.com/tfkr-ae/bridgelog/domain"
	"go.uber.org/zap"
)

// WithConnectivity subscribes the logger to src for online/offline transitions.
// Without it the logger assumes it is always online.
func WithConnectivity(src domain.ConnectivitySource) func(*Logger) error {
	return func(l *Logger) error {
		if src == nil {
			return errors.New("connectivity source is nil")
		}
		l.connectivity = src
		return nil
	}
}

// WithZap sets the zap logger used for console traces and internal warnings.
func WithZap(log *zap.Logger) func(*Logger) error {
	return func(l *Logger) error {
		if log == nil {
			return errors.New("zap logger is nil")
		}
		l.log = log
		return nil
	}
}

// WithRetry sets how many times a failed delivery is retried and the base retry delay.
func WithRetry(maxRetries int, delay time.Duration) func(*Logger) error {
	return func(l *Logger) error {
		if maxRetries < 0 {
			return fmt.Errorf("max retries should not be negative, got %d", maxRetries)
		}
		if delay < 0 {
			return fmt.Errorf("retry delay should not be negative, got %s", delay)
		}
		l.maxRetries = maxRetries
		l.retryDelay = delay
		return nil
	}
}

// WithMirrorLimit sets how many entries the local mirror keeps.
func WithMirrorLimit(limit int) func(*Logger) error {
	return func(l *Logger) error {
		if limit < 1 {
			return fmt.Errorf("mirror limit should be at least 1, got %d", limit)
		}
		l.mirrorLimit = limit
		return nil
	}
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) func(*Logger) error {
	return func(l *Logger) error {
		if id == "" {
			return errors.New("session id is empty")
		}
		l.sessionID = id
		return nil
	}
}

// WithUserAgent sets the client identification stamped on every entry.
func WithUserAgent(userAgent string) func(*Logger) error {
	return func(l *Logger) error {
		l.userAgent = userAgent
		return nil
	}
}

// WithURLFunc sets the provider of the current location, read on every Record.
func WithURLFunc(f func() string) func(*Logger) error {
	return func(l *Logger) error {
		l.urlFunc = f
		return nil
	}
}

// WithUserIDFunc sets the provider of the signed-in user, read on every Record.
// An empty result is recorded as domain.AnonymousUser.
func WithUserIDFunc(f func() string) func(*Logger) error {
	return func(l *Logger) error {
		l.userIDFunc = f
		return nil
	}
}

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) func(*Logger) error {
	return func(l *Logger) error {
		if now == nil {
			return errors.New("clock is nil")
		}
		l.now = now
		return nil
	}
}

// WithConfig applies the retry and mirror settings from cfg.
func WithConfig(cfg *Config) func(*Logger) error {
	return func(l *Logger) error {
		if err := WithRetry(cfg.MaxRetries, cfg.RetryDelay)(l); err != nil {
			return err
		}
		return WithMirrorLimit(cfg.MirrorLimit)(l)
	}
}
