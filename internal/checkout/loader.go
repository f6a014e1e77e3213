package checkout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/skillspark/hub-api/internal/resilience"
)

// HTTPScriptLoader fetches the checkout script once. A successful load is
// sticky; a failed load can be retried by calling Load again.
type HTTPScriptLoader struct {
	URL  string
	HTTP resilience.HTTPClient

	mu     sync.Mutex
	loaded bool
	script []byte
}

// Loaded reports whether the script is already available.
func (l *HTTPScriptLoader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Script returns the loaded script body.
func (l *HTTPScriptLoader) Script() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.script
}

// Load fetches the script unless it is already present.
func (l *HTTPScriptLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return err
	}
	resp, err := l.HTTP.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("script fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return fmt.Errorf("script fetch: empty body")
	}
	l.script = body
	l.loaded = true
	return nil
}
