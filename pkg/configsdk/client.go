package configsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/config-center/pkg/domainpack"
)

// InvalidPackError reports a served pack that fails the domain pack schema.
type InvalidPackError struct {
	BusinessLine string
	Issues       []string
}

func (e *InvalidPackError) Error() string {
	return fmt.Sprintf("configsdk: active pack for %s is invalid: %s", e.BusinessLine, strings.Join(e.Issues, "; "))
}

type cacheEntry struct {
	pack      *domainpack.DomainPack
	expiresAt time.Time
}

// Client serves active domain packs. Fetches go through a TTL cache, and
// concurrent misses for the same key share one request. When a fetch fails
// the last pack successfully served for that key is returned instead.
//
// Returned packs are shared between callers and must not be modified.
type Client struct {
	t         *transport
	log       *zap.Logger
	ttl       time.Duration
	timeout   time.Duration
	now       func() time.Time
	validator *domainpack.Validator

	mu        sync.Mutex
	cache     map[string]cacheEntry
	lastKnown map[string]*domainpack.DomainPack
	group     singleflight.Group
}

func New(opts Options) (*Client, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	return &Client{
		t:         &transport{baseURL: opts.BaseURL, apiKey: opts.APIKey, http: opts.HTTPClient},
		log:       opts.Logger.With(zap.String("client", "ConfigClient")),
		ttl:       opts.CacheTTL,
		timeout:   opts.FetchTimeout,
		now:       opts.Now,
		validator: domainpack.NewValidator(),
		cache:     map[string]cacheEntry{},
		lastKnown: map[string]*domainpack.DomainPack{},
	}, nil
}

// GetActivePack returns the pack live for businessLine in env; env defaults
// to prod.
func (c *Client) GetActivePack(ctx context.Context, businessLine, env string) (*domainpack.DomainPack, error) {
	businessLine = strings.TrimSpace(businessLine)
	if businessLine == "" {
		return nil, fmt.Errorf("configsdk: business line required")
	}
	if env = strings.TrimSpace(env); env == "" {
		env = "prod"
	}
	key := businessLine + ":" + env

	if pack, ok := c.cached(key); ok {
		return pack, nil
	}

	// The shared fetch outlives any one caller; a caller that gives up only
	// stops waiting.
	ch := c.group.DoChan(key, func() (any, error) {
		if pack, ok := c.cached(key); ok {
			return pack, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		pack, err := c.fetch(fetchCtx, businessLine, env)
		if err != nil {
			return nil, err
		}
		c.store(key, pack)
		return pack, nil
	})
	var (
		v   any
		err error
	)
	select {
	case res := <-ch:
		v, err = res.Val, res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if fallback := c.fallback(key); fallback != nil {
			c.log.Warn("serving last known pack",
				zap.String("business_line", businessLine),
				zap.String("env", env),
				zap.Error(err),
			)
			return fallback, nil
		}
		return nil, err
	}
	return v.(*domainpack.DomainPack), nil
}

// Invalidate drops the cached pack for businessLine/env. The last known pack
// is kept for fallback.
func (c *Client) Invalidate(businessLine, env string) {
	c.mu.Lock()
	delete(c.cache, businessLine+":"+env)
	c.mu.Unlock()
}

func (c *Client) fetch(ctx context.Context, businessLine, env string) (*domainpack.DomainPack, error) {
	path := "/runtime/packs/" + url.PathEscape(businessLine) + "?env=" + url.QueryEscape(env)
	var payload json.RawMessage
	if err := c.t.do(ctx, "GET", path, nil, &payload); err != nil {
		return nil, err
	}
	content := unwrapPack(payload)
	pack, issues := c.validator.Decode(content)
	if len(issues) > 0 {
		return nil, &InvalidPackError{BusinessLine: businessLine, Issues: issues}
	}
	return pack, nil
}

// unwrapPack accepts both {"pack": {...}, "versionNo": n} and a bare pack.
func unwrapPack(payload json.RawMessage) []byte {
	var envelope struct {
		Pack json.RawMessage `json:"pack"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil && len(bytes.TrimSpace(envelope.Pack)) > 0 {
		return envelope.Pack
	}
	return payload
}

func (c *Client) cached(key string) (*domainpack.DomainPack, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.cache, key)
		return nil, false
	}
	return e.pack, true
}

func (c *Client) store(key string, pack *domainpack.DomainPack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastKnown[key] = pack
	if c.ttl > 0 {
		c.cache[key] = cacheEntry{pack: pack, expiresAt: c.now().Add(c.ttl)}
	}
}

func (c *Client) fallback(key string) *domainpack.DomainPack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastKnown[key]
}
