// Package listener provides the net.Listener the sink server accepts connections on.
package listener

import (
	"errors"
	"net"
	"time"

	"go.uber.org/zap"
)

const maxAcceptDelay = time.Second

// ResilientListener wraps net.Listener so a failed Accept does not take the server down.
// Recoverable errors are logged and accepting continues, backing off while errors repeat.
// net.ErrClosed is returned to the caller.
type ResilientListener struct {
	net.Listener
	log   *zap.Logger
	sleep func(time.Duration)
}

func NewResilientListener(listenerToWrap net.Listener, log *zap.Logger) *ResilientListener {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResilientListener{Listener: listenerToWrap, log: log, sleep: time.Sleep}
}

// Accept waits for the next connection, skipping over recoverable errors.
func (l *ResilientListener) Accept() (net.Conn, error) {
	var delay time.Duration
	for {
		conn, err := l.Listener.Accept()
		if err == nil {
			return conn, nil
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, err
		}

		if delay == 0 {
			delay = 5 * time.Millisecond
		} else {
			delay *= 2
		}
		if delay > maxAcceptDelay {
			delay = maxAcceptDelay
		}
		l.log.Warn("recoverable listener error, connection rejected", zap.Error(err), zap.Duration("retry_in", delay))
		l.sleep(delay)
	}
}
