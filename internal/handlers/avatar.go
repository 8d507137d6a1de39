// internal/handlers/avatar.go
package handlers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// AvatarProxy is a thin wrapper around the external avatar generator. It
// fetches rendered SVGs by style and seed and caches them in memory;
// nothing in game logic depends on it.
type AvatarProxy struct {
	Upstream string
	Logger   *logrus.Logger

	client *http.Client

	mu    sync.Mutex
	cache map[string][]byte
}

// NewAvatarProxy points the proxy at a dicebear-compatible upstream, e.g.
// "https://api.dicebear.com/9.x".
func NewAvatarProxy(upstream string, logger *logrus.Logger) *AvatarProxy {
	return &AvatarProxy{
		Upstream: upstream,
		Logger:   logger,
		client:   &http.Client{Timeout: 10 * time.Second},
		cache:    make(map[string][]byte),
	}
}

// Handle serves GET /avatar/:style/:seed as image/svg+xml.
func (p *AvatarProxy) Handle(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	style := ps.ByName("style")
	seed := ps.ByName("seed")
	if style == "" || seed == "" || len(style) > 64 || len(seed) > 64 {
		http.Error(w, "invalid style or seed", http.StatusBadRequest)
		return
	}

	key := style + "/" + seed
	p.mu.Lock()
	svg, ok := p.cache[key]
	p.mu.Unlock()

	if !ok {
		fetched, err := p.fetch(style, seed)
		if err != nil {
			p.Logger.Warnf("avatar fetch %s failed: %v", key, err)
			http.Error(w, "avatar upstream unavailable", http.StatusBadGateway)
			return
		}
		svg = fetched
		p.mu.Lock()
		p.cache[key] = svg
		p.mu.Unlock()
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(svg)
}

func (p *AvatarProxy) fetch(style, seed string) ([]byte, error) {
	target := fmt.Sprintf("%s/%s/svg?seed=%s", p.Upstream, url.PathEscape(style), url.QueryEscape(seed))
	resp, err := p.client.Get(target)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned %d for %s", resp.StatusCode, target)
	}
	// Generated SVGs are a few KB; 1MB is the hard cap.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return body, nil
}
