/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package nager implements source.HolidaySource against the Nager.Date
// public holiday API.
package nager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/tomoncle/holidaykeeper/source"
	"github.com/tomoncle/holidaykeeper/types"
	"github.com/tomoncle/holidaykeeper/utils"
)

const (
	DefaultBaseURL = "https://date.nager.at/api/v3"

	maxBodyBytes    = 4 << 20
	maxSnippetBytes = 200
)

// Config tunes the HTTP transport and retry policy.
type Config struct {
	BaseURL        string        `yaml:"base_url" toml:"base_url"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" toml:"connect_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	MaxRetries     uint64        `yaml:"max_retries" toml:"max_retries"`
	RetryInitial   time.Duration `yaml:"retry_initial" toml:"retry_initial"`
	RetryMax       time.Duration `yaml:"retry_max" toml:"retry_max"`
}

// DefaultConfig returns a 5s connect and 10s response timeout with two
// retries.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
		MaxRetries:     2,
		RetryInitial:   500 * time.Millisecond,
		RetryMax:       5 * time.Second,
	}
}

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to the Nager.Date API.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logrus.Logger
}

var _ source.HolidaySource = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client; zero fields of cfg take their defaults.
func New(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = def.RetryInitial
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = def.RetryMax
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
				TLSHandshakeTimeout:   cfg.ConnectTimeout,
				ResponseHeaderTimeout: cfg.RequestTimeout,
				MaxIdleConnsPerHost:   16,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		logger: utils.NewLogger("NAGER"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublicHolidays fetches GET /PublicHolidays/{year}/{countryCode}. A 204 or
// an empty body yields no holidays and no error.
func (c *Client) PublicHolidays(ctx context.Context, countryCode string, year int) ([]source.RawHoliday, error) {
	path := fmt.Sprintf("/PublicHolidays/%d/%s", year, strings.ToUpper(countryCode))
	var holidays []source.RawHoliday
	if err := c.getJSON(ctx, path, &holidays); err != nil {
		return nil, err
	}
	return holidays, nil
}

// AvailableCountries fetches GET /AvailableCountries.
func (c *Client) AvailableCountries(ctx context.Context) ([]source.RawCountry, error) {
	var countries []source.RawCountry
	if err := c.getJSON(ctx, "/AvailableCountries", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	url := c.cfg.BaseURL + path
	body, err := c.get(ctx, url)
	if err != nil {
		return types.NewError(types.CodeRemoteFetch, "GET "+path, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return types.NewError(types.CodeRemoteFetch, "decode "+path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusNoContent {
			body = nil
			return nil
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			body = data
			return nil
		}

		serr := &StatusError{Method: req.Method, URL: url, StatusCode: resp.StatusCode, Body: snippet(data)}
		if serr.Retryable() {
			return serr
		}
		return backoff.Permanent(serr)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.RetryInitial
	policy.MaxInterval = c.cfg.RetryMax
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.WithFields(logrus.Fields{"url": url, "wait": wait, "error": err}).Warn("retrying holiday source request")
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(policy, c.cfg.MaxRetries), ctx), notify)
	return body, err
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= maxSnippetBytes {
		return s
	}
	cut := maxSnippetBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
