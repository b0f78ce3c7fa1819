package bridgelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/tfkr-ae/bridgelog/domain"
	"github.com/yosssi/gohtml"
)

// ExportFormat is the document type produced by ExportLocal.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportHTML ExportFormat = "html"
)

// ParseExportFormat converts a format name into an ExportFormat.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportJSON:
		return ExportJSON, nil
	case ExportHTML:
		return ExportHTML, nil
	default:
		return "", fmt.Errorf("export format should be either: json, html, got %q", s)
	}
}

// ExportFileName returns the download name for an export made at now,
// e.g. startupbridge_logs_2025-10-20.json or startupbridge_logs_2025-10-20.html.br.
func ExportFileName(now time.Time, format ExportFormat, compressed bool) string {
	name := fmt.Sprintf("startupbridge_logs_%s.%s", now.UTC().Format(time.DateOnly), format)
	if compressed {
		name += ".br"
	}
	return name
}

// NewCompressedWriter wraps w with brotli compression. Close it to flush.
func NewCompressedWriter(w io.Writer) io.WriteCloser {
	return brotli.NewWriterLevel(w, brotli.DefaultCompression)
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"json": func(v any) string {
		b, err := json.Marshal(v)
		if err != nil {
			return err.Error()
		}
		return string(b)
	},
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>StartupBridge activity log</title></head>
<body><h1>StartupBridge activity log</h1><p>{{len .}} entries</p>
<table><thead><tr><th>Time</th><th>Level</th><th>Action</th><th>User</th><th>Session</th><th>URL</th><th>Data</th></tr></thead>
<tbody>{{range .}}<tr class="level-{{.Level}}"><td>{{.Timestamp.Format "2006-01-02T15:04:05.000Z07:00"}}</td><td>{{.Level}}</td><td>{{.Action}}</td><td>{{.Context.UserID}}</td><td>{{.Context.SessionID}}</td><td>{{.Context.URL}}</td><td><code>{{json .Data}}</code></td></tr>{{end}}</tbody>
</table></body></html>`))

// WriteExport renders entries as a document in the given format.
func WriteExport(w io.Writer, entries []*domain.Entry, format ExportFormat) error {
	switch format {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encoding export : %w", err)
		}
		return nil
	case ExportHTML:
		var buf bytes.Buffer
		if err := reportTemplate.Execute(&buf, entries); err != nil {
			return fmt.Errorf("rendering export : %w", err)
		}
		if _, err := w.Write(gohtml.FormatBytes(buf.Bytes())); err != nil {
			return fmt.Errorf("writing export : %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// LocalEntries returns the entries in the local mirror, oldest first.
func (l *Logger) LocalEntries() ([]*domain.Entry, error) {
	return l.mirror.Entries()
}

// ClearLocal empties the local mirror.
func (l *Logger) ClearLocal() error {
	if err := l.mirror.Clear(); err != nil {
		return err
	}
	l.log.Info("local logs cleared")
	return nil
}

// ExportLocal writes the local mirror to w as a document in the given format.
func (l *Logger) ExportLocal(w io.Writer, format ExportFormat) error {
	entries, err := l.mirror.Entries()
	if err != nil {
		return err
	}
	return WriteExport(w, entries, format)
}
