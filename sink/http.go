package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tfkr-ae/bridgelog/domain"
)

var _ domain.Sink = (*HTTPSink)(nil)

// ActivityPath is the create endpoint of the sink server.
const ActivityPath = "/api/activity"

// HTTPSink delivers entries to a sink server over REST.
type HTTPSink struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSink returns a sink posting to baseURL + ActivityPath.
// A nil client is replaced by one with the given timeout.
func NewHTTPSink(baseURL string, client *http.Client, timeout time.Duration) *HTTPSink {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Deliver implements domain.Sink. Any non-2xx status is an error.
func (s *HTTPSink) Deliver(ctx context.Context, entry *domain.Entry) error {
	body, err := json.Marshal(NewPayload(entry))
	if err != nil {
		return fmt.Errorf("encoding entry %s : %w", entry.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+ActivityPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request : %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if entry.Context.UserAgent != "" {
		req.Header.Set("User-Agent", entry.Context.UserAgent)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting entry %s : %w", entry.ID, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("posting entry %s : unexpected status %s: %s", entry.ID, res.Status, strings.TrimSpace(string(msg)))
	}
	io.Copy(io.Discard, res.Body)
	return nil
}
