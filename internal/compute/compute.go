// Package compute is the boundary to the external dice computation routine.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rcliao/d6calc/internal/config"
)

// Invocation is the name of the remote operation.
const Invocation = "compute"

// ErrNoService is returned by FromConfig when no transport is configured.
var ErrNoService = errors.New("no computation service configured (set D6CALC_COMPUTE_URL or D6CALC_COMPUTE_CMD)")

// Request is the payload of one compute call.
type Request struct {
	// InputD6 holds the typed characters joined by "|".
	InputD6 string `json:"inputD6"`
	// InputLv is the spell level in decimal.
	InputLv string `json:"inputLv"`
}

// Service maps a request to result text. The text is shown verbatim.
type Service interface {
	Compute(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to Service.
type Func func(ctx context.Context, req Request) (string, error)

func (f Func) Compute(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// --- HTTP transport ---

// HTTPService calls a compute endpoint over HTTP.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPService creates a client for baseURL. A zero timeout disables the
// client deadline.
func NewHTTPService(baseURL string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPService) Compute(ctx context.Context, req Request) (string, error) {
	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/"+Invocation, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("compute request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read compute response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("compute error %d: %s", resp.StatusCode, string(b))
	}

	// A JSON string body is unwrapped; anything else is the result as-is.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var text string
		if err := json.Unmarshal(b, &text); err == nil {
			return text, nil
		}
	}
	return string(b), nil
}

// --- Factory ---

// FromConfig builds the service described by cfg. The HTTP transport wins
// when both are set.
func FromConfig(cfg config.Compute) (Service, error) {
	var svc Service
	switch {
	case cfg.URL != "":
		svc = NewHTTPService(cfg.URL, cfg.Timeout)
	case cfg.Command != "":
		es, err := NewExecService(cfg.Command, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		svc = es
	default:
		return nil, ErrNoService
	}

	if cfg.CacheSize > 0 {
		cs, err := Cached(svc, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		return cs, nil
	}
	return svc, nil
}
