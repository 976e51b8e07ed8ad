// Copyright 2025 Arbor Health Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package helpdesk

import (
	"strings"
	"time"
)

// DomainSuffix is the hosted-helpdesk domain suffix appended to the
// account subdomain.
const DomainSuffix = ".freshdesk.com"

// Config holds configuration for the helpdesk API client.
type Config struct {
	// Domain is the helpdesk account domain. Accepts a bare subdomain
	// ("acme"), a full domain ("acme.freshdesk.com") or a URL
	// ("https://acme.freshdesk.com"); Normalize reduces all three to the
	// full domain form.
	Domain string

	// APIKey authenticates requests. Sent as the basic-auth username per the
	// platform's API convention.
	APIKey string

	// BaseURL overrides the domain-derived API endpoint. Used for
	// self-hosted installations and tests; leave empty for hosted accounts.
	BaseURL string

	// PageSize is the number of records requested per page when listing
	// tickets and companies. Default: 100.
	PageSize int

	// Timeout bounds each HTTP request. Default: 30s.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDomain sets the helpdesk account domain.
func WithDomain(domain string) ConfigOption {
	return func(c *Config) {
		c.Domain = domain
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL overrides the domain-derived API endpoint.
func WithBaseURL(baseURL string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithPageSize sets the listing page size.
func WithPageSize(size int) ConfigOption {
	return func(c *Config) {
		c.PageSize = size
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config with sensible defaults. Domain and APIKey
// have no defaults and must be provided.
func DefaultConfig() *Config {
	return &Config{
		PageSize: 100,
		Timeout:  30 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form: the domain is
// stripped of any protocol and path, reduced to its subdomain, and the hosted
// suffix is re-appended.
func (c *Config) Normalize() {
	c.Domain = NormalizeDomain(c.Domain)
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if (c.Domain == "" && c.BaseURL == "") || c.APIKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// Endpoint returns the base URL API paths are appended to.
func (c *Config) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return "https://" + c.Domain
}

// NormalizeDomain reduces a configured domain to the canonical
// "subdomain.freshdesk.com" form. Empty input stays empty.
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	if d == "" {
		return ""
	}
	// Keep only the subdomain, then re-append the hosted suffix.
	if i := strings.IndexByte(d, '.'); i >= 0 {
		d = d[:i]
	}
	return d + DomainSuffix
}

// ConnectionStatus reports the configured connection for health and
// diagnostics display. It never makes a network call: Connected means
// "configured", not "reachable".
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Domain    string `json:"domain,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ConnectionStatus derives the diagnostic status from the configuration.
func (c *Config) ConnectionStatus() ConnectionStatus {
	if err := c.Validate(); err != nil {
		return ConnectionStatus{Connected: false, Error: err.Error()}
	}
	return ConnectionStatus{Connected: true, Domain: c.Domain}
}
