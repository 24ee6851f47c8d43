package preview

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/pkg/logger"
)

var (
	// ErrStreamEnded is returned by Stream when the server unmounted the widget.
	ErrStreamEnded = errors.New("widget stream ended")
	// ErrStatus wraps every unexpected HTTP status.
	ErrStatus = errors.New("unexpected status")
)

// AckResponse is the answer to a selection.
type AckResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPClient talks to the widget API. Requests use the timeout, streams
// do not.
type HTTPClient struct {
	base   string
	client *http.Client
	stream *http.Client
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: timeout},
		stream: &http.Client{},
	}
}

// Kinds lists the widgets the server can mount.
func (c *HTTPClient) Kinds(ctx context.Context) ([]types.WidgetInfo, error) {
	var out []types.WidgetInfo
	err := c.do(ctx, http.MethodGet, "/widgets", nil, http.StatusOK, &out)
	return out, err
}

// Mount creates a widget session and returns its first snapshot.
func (c *HTTPClient) Mount(ctx context.Context, kind model.Kind) (types.Snapshot, error) {
	var snap types.Snapshot
	err := c.do(ctx, http.MethodPost, "/widgets", map[string]string{"kind": string(kind)}, http.StatusCreated, &snap)
	return snap, err
}

// Select submits a marker selection under a fresh event id.
func (c *HTTPClient) Select(ctx context.Context, widgetID, markerID string) (AckResponse, error) {
	var ack AckResponse
	body := map[string]string{"event_id": uuid.NewString(), "marker_id": markerID}
	err := c.do(ctx, http.MethodPost, "/widgets/"+widgetID+"/select", body, 0, &ack)
	return ack, err
}

// Unmount tears the widget session down.
func (c *HTTPClient) Unmount(ctx context.Context, widgetID string) error {
	return c.do(ctx, http.MethodDelete, "/widgets/"+widgetID, nil, http.StatusNoContent, nil)
}

// Stream follows the widget's snapshot stream, calling fn for each one,
// until ctx is done or the server ends it.
func (c *HTTPClient) Stream(ctx context.Context, widgetID string, fn func(types.Snapshot)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/widgets/"+widgetID+"/stream", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Debug(ctx, "failed to close stream body", logger.Error(err))
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	err = readEvents(resp.Body, fn)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// readEvents parses a text/event-stream body. Comments and unknown events
// are skipped; an end event stops reading with ErrStreamEnded.
func readEvents(r io.Reader, fn func(types.Snapshot)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var event string
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if event == "end" {
				return ErrStreamEnded
			}
			if (event == "" || event == "snapshot") && data.Len() > 0 {
				var snap types.Snapshot
				if err := json.Unmarshal([]byte(data.String()), &snap); err != nil {
					return fmt.Errorf("failed to decode snapshot: %w", err)
				}
				fn(snap)
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return io.ErrUnexpectedEOF
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Debug(ctx, "failed to close response body", logger.Error(err))
		}
	}()
	if (want != 0 && resp.StatusCode != want) || resp.StatusCode >= http.StatusBadRequest {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	var e apiError
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Code != "" {
		return fmt.Errorf("%w %d: %s: %s", ErrStatus, resp.StatusCode, e.Code, e.Message)
	}
	return fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
}
