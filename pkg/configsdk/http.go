// Package configsdk is the client side of the config center: a runtime
// client that serves the active domain pack of a business line, and an admin
// client for release automation.
package configsdk

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

	"go.uber.org/zap"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 60 * time.Second
)

type Options struct {
	BaseURL string
	// APIKey is sent as x-api-key. Only mutating admin calls need it.
	APIKey     string
	HTTPClient *http.Client
	Logger     *zap.Logger
	// CacheTTL applies to the runtime client. Zero means DefaultCacheTTL; a
	// negative value disables caching.
	CacheTTL time.Duration
	// FetchTimeout bounds a shared runtime fetch. It is independent of any
	// single caller's context. Zero means DefaultTimeout.
	FetchTimeout time.Duration
	Now          func() time.Time
}

func (o Options) normalize() (Options, error) {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.BaseURL == "" {
		return o, fmt.Errorf("configsdk: base url required")
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o, nil
}

// APIError is a non-2xx answer from the config center.
type APIError struct {
	Status   int
	Code     string
	Message  string
	Expected string
	Reason   string
	Issues   []string
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "config center http %d", e.Status)
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Reason != "" {
		b.WriteString(" (reason " + e.Reason + ")")
	}
	if e.Expected != "" {
		b.WriteString(" (expected " + e.Expected + ")")
	}
	return b.String()
}

func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

func IsAlreadyExists(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == "already_exists"
}

type errorEnvelope struct {
	Error struct {
		Message  string   `json:"message"`
		Code     string   `json:"code"`
		Expected string   `json:"expected"`
		Reason   string   `json:"reason"`
		Issues   []string `json:"issues"`
	} `json:"error"`
}

type transport struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func (t *transport) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("configsdk encode: %w", err)
		}
		rdr = &buf
	}
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.apiKey != "" {
		req.Header.Set("X-Api-Key", t.apiKey)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("configsdk read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var env errorEnvelope
		if json.Unmarshal(raw, &env) == nil && (env.Error.Message != "" || env.Error.Code != "") {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Expected = env.Error.Expected
			apiErr.Reason = env.Error.Reason
			apiErr.Issues = env.Error.Issues
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("configsdk decode: %w", err)
	}
	return nil
}
