package bridgelog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/tfkr-ae/bridgelog/connectivity"
	"github.com/tfkr-ae/bridgelog/domain"
)

func TestExportFileName(t *testing.T) {
	now := time.Date(2025, 10, 20, 23, 0, 0, 0, time.UTC)

	if got := ExportFileName(now, ExportJSON, false); got != "startupbridge_logs_2025-10-20.json" {
		t.Fatalf("\nwanted:\nstartupbridge_logs_2025-10-20.json\ngot:\n%s", got)
	}
	if got := ExportFileName(now, ExportHTML, true); got != "startupbridge_logs_2025-10-20.html.br" {
		t.Fatalf("\nwanted:\nstartupbridge_logs_2025-10-20.html.br\ngot:\n%s", got)
	}
}

func TestParseExportFormat(t *testing.T) {
	for in, want := range map[string]ExportFormat{"": ExportJSON, "JSON": ExportJSON, "html": ExportHTML} {
		got, err := ParseExportFormat(in)
		if err != nil || got != want {
			t.Fatalf("\nwanted:\n%q\ngot:\n%q, %v", want, got, err)
		}
	}
	if _, err := ParseExportFormat("pdf"); err == nil {
		t.Fatalf("\nwanted:\nnon-nil\ngot:\nnil")
	}
}

func TestLogger_ExportLocal(t *testing.T) {
	l := setupTestLogger(t, newFakeSink(), newMemStore(), connectivity.NewMonitor(false))
	<-l.Record(context.Background(), "user_login", map[string]any{"email": "a@b.com"}, domain.LevelInfo)
	<-l.Record(context.Background(), "search", map[string]any{"q": "<script>"}, domain.LevelDebug)

	t.Run("should export json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := l.ExportLocal(&buf, ExportJSON); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		var got []*domain.Entry
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("decoding export: %v", err)
		}
		if len(got) != 2 || got[0].Action != "user_login" || got[1].Action != "search" {
			t.Fatalf("\nwanted:\n[user_login search]\ngot:\n%+v", got)
		}
	})

	t.Run("should export escaped html", func(t *testing.T) {
		var buf bytes.Buffer
		if err := l.ExportLocal(&buf, ExportHTML); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		out := buf.String()
		for _, want := range []string{"<table>", "user_login", "2 entries", "level-DEBUG"} {
			if !strings.Contains(out, want) {
				t.Fatalf("\nwanted:\noutput containing %q\ngot:\n%s", want, out)
			}
		}
		if strings.Contains(out, "<script>") {
			t.Fatalf("wanted data to be escaped\ngot:\n%s", out)
		}
	})

	t.Run("should round trip through brotli", func(t *testing.T) {
		var compressed bytes.Buffer
		w := NewCompressedWriter(&compressed)
		if err := l.ExportLocal(w, ExportJSON); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("closing writer: %v", err)
		}

		plain, err := io.ReadAll(brotli.NewReader(&compressed))
		if err != nil {
			t.Fatalf("decompressing: %v", err)
		}
		if !bytes.Contains(plain, []byte(`"user_login"`)) {
			t.Fatalf("\nwanted:\nexport containing user_login\ngot:\n%s", plain)
		}
	})

	t.Run("should clear local entries", func(t *testing.T) {
		if err := l.ClearLocal(); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		got, err := l.LocalEntries()
		if err != nil || len(got) != 0 {
			t.Fatalf("\nwanted:\nempty\ngot:\n%v, %v", got, err)
		}
	})
}
