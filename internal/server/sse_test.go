package server

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scrapekit-ai/scrapekit/internal/event"
	"github.com/scrapekit-ai/scrapekit/pkg/types"
)

// mockResponseWriter implements http.Flusher for testing.
type mockResponseWriter struct {
	*httptest.ResponseRecorder
	flushed int
}

func (m *mockResponseWriter) Flush() {
	m.flushed++
}

func newMockResponseWriter() *mockResponseWriter {
	return &mockResponseWriter{
		ResponseRecorder: httptest.NewRecorder(),
	}
}

func TestNewSSEWriter(t *testing.T) {
	w := newMockResponseWriter()
	sse, err := newSSEWriter(w)
	if err != nil {
		t.Fatalf("newSSEWriter failed: %v", err)
	}
	if sse == nil {
		t.Fatal("SSE writer should not be nil")
	}
}

func TestNewSSEWriter_NoFlusher(t *testing.T) {
	w := &noFlushWriter{}
	_, err := newSSEWriter(w)
	if err == nil {
		t.Error("Expected error for writer without Flusher")
	}
}

type noFlushWriter struct{}

func (n *noFlushWriter) Header() http.Header       { return http.Header{} }
func (n *noFlushWriter) Write([]byte) (int, error) { return 0, nil }
func (n *noFlushWriter) WriteHeader(int)           {}

func TestSSEWriter_WriteEvent(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	data := event.ResultsChangedData{Suite: "news", Job: "headlines", Diff: "+hello"}
	err := sse.writeEvent("results.changed", data)
	if err != nil {
		t.Fatalf("writeEvent failed: %v", err)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: results.changed\n") {
		t.Error("Expected event line")
	}
	if !strings.Contains(body, `"diff":"+hello"`) {
		t.Error("Expected data to contain diff")
	}
	if w.flushed == 0 {
		t.Error("Expected Flush to be called")
	}
}

func TestSSEWriter_WriteHeartbeat(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	sse.writeHeartbeat()

	body := w.Body.String()
	if !strings.Contains(body, ": heartbeat\n") {
		t.Errorf("Expected heartbeat comment, got: %s", body)
	}
	if w.flushed == 0 {
		t.Error("Expected Flush to be called")
	}
}

func TestSSEEventFormat(t *testing.T) {
	w := newMockResponseWriter()
	sse, _ := newSSEWriter(w)

	sse.writeEvent("job.started", event.JobStartedData{})

	// Check SSE format: event line, data line, empty line
	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("Expected at least 3 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "event: ") {
		t.Errorf("First line should be event, got: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "data: ") {
		t.Errorf("Second line should be data, got: %s", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("Third line should be empty, got: %s", lines[2])
	}
}

func TestEvents_Headers(t *testing.T) {
	event.Reset()
	srv := New(DefaultConfig(), nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed before headers: %v", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "text/event-stream") {
		t.Errorf("Expected Content-Type to start with text/event-stream, got: %s", contentType)
	}
	if resp.Header.Get("Cache-Control") != "no-cache" {
		t.Errorf("Expected Cache-Control: no-cache, got: %s", resp.Header.Get("Cache-Control"))
	}
}

func TestEvents_StreamsBusEvents(t *testing.T) {
	event.Reset()
	srv := New(DefaultConfig(), nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	lines := make(chan string, 32)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// The handler subscribes before it flushes headers, so once Do has
	// returned the subscription is live and this publish cannot race it.
	event.PublishSync(event.Event{
		Type: event.JobStarted,
		Data: event.JobStartedData{Record: &types.RunRecord{
			ID:    "01HTESTRUN",
			Suite: "news",
			Job:   "headlines",
		}},
	})

	var got []string
	deadline := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("Stream closed before event arrived")
			}
			if line != "" {
				got = append(got, line)
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for event, got lines: %v", got)
		}
	}

	if got[0] != "event: job.started" {
		t.Errorf("Expected event line, got: %s", got[0])
	}
	if !strings.HasPrefix(got[1], "data: ") || !strings.Contains(got[1], "01HTESTRUN") {
		t.Errorf("Expected data line with run ID, got: %s", got[1])
	}
}

func TestEvents_FiltersInternalEvents(t *testing.T) {
	event.Reset()
	srv := New(DefaultConfig(), nil)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/api/events", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var mu sync.Mutex
	var received []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			mu.Lock()
			received = append(received, scanner.Text())
			mu.Unlock()
		}
	}()

	// config.reloaded stays internal; results.changed is streamed.
	event.PublishSync(event.Event{
		Type: event.ConfigReloaded,
		Data: event.ConfigReloadedData{Path: "/tmp/scrapekit.jsonc"},
	})
	event.PublishSync(event.Event{
		Type: event.ResultsChanged,
		Data: event.ResultsChangedData{Suite: "news", Job: "headlines", Diff: "+x"},
	})

	<-done

	mu.Lock()
	defer mu.Unlock()

	foundReload := false
	foundChange := false
	for _, line := range received {
		if strings.Contains(line, "config.reloaded") {
			foundReload = true
		}
		if strings.Contains(line, "results.changed") {
			foundChange = true
		}
	}
	if foundReload {
		t.Error("Should not have streamed config.reloaded")
	}
	if !foundChange {
		t.Errorf("Expected results.changed in stream, got: %v", received)
	}
}
