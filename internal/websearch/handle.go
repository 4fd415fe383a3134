// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"sync"

	"github.com/pdiddy/company-researcher/internal/httputil"
	"github.com/pdiddy/company-researcher/pkg/types"
)

// Handle owns the process-wide connection to the search backend: created
// on first use, reused by every subsequent invocation, closed once on
// shutdown. Initialization is guarded so concurrent first acquisitions
// cannot build duplicate clients.
type Handle struct {
	cfg    types.SearchConfig
	once   sync.Once
	client *Client
}

// NewHandle prepares a Handle without opening anything.
func NewHandle(cfg types.SearchConfig) *Handle {
	return &Handle{cfg: cfg}
}

// Client returns the shared client, building it on first call.
func (h *Handle) Client() *Client {
	h.once.Do(func() {
		h.client = &Client{
			HTTPClient: httputil.NewClient(h.cfg.HTTPConfig),
			APIKey:     h.cfg.APIKey,
			UserAgent:  h.cfg.UserAgent,
		}
	})
	return h.client
}

// Configured reports whether a backend API key is present.
func (h *Handle) Configured() bool {
	return h.cfg.APIKey != ""
}

// Close releases idle connections. The Handle must not be used afterwards.
func (h *Handle) Close() {
	if h.client != nil && h.client.HTTPClient != nil {
		h.client.HTTPClient.CloseIdleConnections()
	}
}
