package bridgelog

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/tfkr-ae/bridgelog/domain"
)

// Actions recorded by the convenience wrappers.
const (
	ActionPageView      = "page_view"
	ActionUserAction    = "user_action"
	ActionError         = "error"
	ActionPerformance   = "performance"
	ActionBusinessEvent = "business_event"
)

// RecordPageView records that page was viewed.
func (l *Logger) RecordPageView(ctx context.Context, page string) <-chan struct{} {
	return l.Record(ctx, ActionPageView, map[string]any{"page": page}, domain.LevelInfo)
}

// RecordUserAction records a generic user action. Keys in details win over "action".
func (l *Logger) RecordUserAction(ctx context.Context, action string, details map[string]any) <-chan struct{} {
	data := map[string]any{"action": action}
	for k, v := range details {
		data[k] = v
	}
	return l.Record(ctx, ActionUserAction, data, domain.LevelInfo)
}

// RecordError records err at ERROR level together with the current stack.
func (l *Logger) RecordError(ctx context.Context, err error, details map[string]any) <-chan struct{} {
	message := "unknown error"
	if err != nil {
		message = err.Error()
	}
	return l.recordError(ctx, message, details)
}

func (l *Logger) recordError(ctx context.Context, message string, details map[string]any) <-chan struct{} {
	if details == nil {
		details = map[string]any{}
	}
	return l.Record(ctx, ActionError, map[string]any{
		"message": message,
		"stack":   string(debug.Stack()),
		"context": details,
	}, domain.LevelError)
}

// RecoverPanic records a panic of the calling goroutine as an error entry with
// context type "panic", waits until the entry is delivered or mirrored, and
// panics again with the same value. It must be deferred directly:
//
//	defer l.RecoverPanic(ctx)
func (l *Logger) RecoverPanic(ctx context.Context) {
	r := recover()
	if r == nil {
		return
	}

	message := fmt.Sprint(r)
	if err, ok := r.(error); ok {
		message = err.Error()
	}
	<-l.recordError(ctx, message, map[string]any{"type": "panic"})
	panic(r)
}

// RecordPerformance records a named measurement.
func (l *Logger) RecordPerformance(ctx context.Context, metric string, value float64, details map[string]any) <-chan struct{} {
	if details == nil {
		details = map[string]any{}
	}
	return l.Record(ctx, ActionPerformance, map[string]any{
		"metric":  metric,
		"value":   value,
		"context": details,
	}, domain.LevelInfo)
}

// Time starts measuring metric. Calling the returned func records the elapsed
// milliseconds as a performance entry; later calls record again from the same start.
func (l *Logger) Time(ctx context.Context, metric string, details map[string]any) func() <-chan struct{} {
	start := l.now()
	return func() <-chan struct{} {
		elapsed := l.now().Sub(start)
		return l.RecordPerformance(ctx, metric, float64(elapsed)/float64(time.Millisecond), details)
	}
}

// RecordBusinessEvent records a marketplace event such as a post or a deal. Keys in data win over "event".
func (l *Logger) RecordBusinessEvent(ctx context.Context, event string, data map[string]any) <-chan struct{} {
	merged := map[string]any{"event": event}
	for k, v := range data {
		merged[k] = v
	}
	return l.Record(ctx, ActionBusinessEvent, merged, domain.LevelInfo)
}
