// Copyright 2025 The adminbff Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package session recovers the access token of a browser session from the authentication
// side-car. It is used for requests, which carry the session cookie only.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/ybbus/httpretry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cache"
	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/x/errorchain"
	"github.com/storeforge/adminbff/internal/x/stringx"
)

// ErrNoSession is returned if there is no usable session for the given cookie. That is the
// regular case for anonymous requests and not a failure.
var ErrNoSession = errors.New("no session")

const maxResponseSize = 64 * 1024

type Token struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id,omitempty"`
	TenantID    string    `json:"tenant_id,omitempty"`
	TenantSlug  string    `json:"tenant_slug,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

//go:generate mockery --name Lookup --structname LookupMock

type Lookup interface {
	// Lookup returns the token of the session identified by the given cookie header value.
	// ErrNoSession is returned if there is none.
	Lookup(ctx context.Context, cookie string) (Token, error)
}

// NewLookup returns a Lookup querying the side-car configured in conf. If no side-car is
// configured, the returned Lookup never finds a session.
func NewLookup(conf config.SessionConfig, cch cache.Cache) Lookup {
	if !conf.Enabled() {
		return disabled{}
	}

	client := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	if conf.Retry != nil {
		client = httpretry.NewCustomClient(
			client,
			httpretry.WithMaxRetryCount(conf.Retry.MaxRetries),
			httpretry.WithBackoffPolicy(
				httpretry.ExponentialBackoff(conf.Retry.MinBackoff, conf.Retry.MaxBackoff, 0)))
	}

	if cch == nil {
		cch = cache.Noop{}
	}

	return &sideCar{
		client:   client,
		endpoint: strings.TrimSuffix(conf.URL, "/") + conf.Path,
		timeout:  conf.Timeout,
		cacheTTL: conf.CacheTTL,
		cache:    cch,
	}
}

type disabled struct{}

func (disabled) Lookup(_ context.Context, _ string) (Token, error) { return Token{}, ErrNoSession }

type sideCar struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	cacheTTL time.Duration
	cache    cache.Cache
}

func (s *sideCar) Lookup(ctx context.Context, cookie string) (Token, error) {
	if len(strings.TrimSpace(cookie)) == 0 {
		return Token{}, ErrNoSession
	}

	key := cacheKey(cookie)

	if token, ok := s.cachedToken(ctx, key); ok {
		return token, nil
	}

	token, err := s.fetchToken(ctx, cookie)
	if err != nil {
		return Token{}, err
	}

	s.cacheToken(ctx, key, token)

	return token, nil
}

func (s *sideCar) fetchToken(ctx context.Context, cookie string) (Token, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return Token{}, errorchain.NewWithMessage(bff.ErrInternal,
			"failed creating session lookup request").CausedBy(err)
	}

	req.Header.Set("Cookie", cookie)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		var clientErr *url.Error
		if errors.As(err, &clientErr) && clientErr.Timeout() {
			return Token{}, errorchain.NewWithMessage(bff.ErrCommunicationTimeout,
				"session lookup timed out").CausedBy(err)
		}

		return Token{}, errorchain.NewWithMessage(bff.ErrCommunication,
			"session lookup failed").CausedBy(err)
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound ||
		resp.StatusCode == http.StatusNoContent:
		return Token{}, ErrNoSession
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Token{}, errorchain.NewWithMessagef(bff.ErrCommunication,
			"unexpected response code from session side-car: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return Token{}, errorchain.NewWithMessage(bff.ErrCommunication,
			"failed reading session lookup response").CausedBy(err)
	}

	return parseToken(raw)
}

func parseToken(raw []byte) (Token, error) {
	if !gjson.ValidBytes(raw) {
		return Token{}, errorchain.NewWithMessage(bff.ErrCommunication,
			"session side-car responded with invalid json")
	}

	res := gjson.ParseBytes(raw)

	token := Token{
		AccessToken: res.Get("access_token").String(),
		UserID:      res.Get("user_id").String(),
		TenantID:    res.Get("tenant_id").String(),
		TenantSlug:  res.Get("tenant_slug").String(),
		ExpiresAt:   expiresAt(res.Get("expires_at")),
	}

	if len(token.AccessToken) == 0 {
		return Token{}, ErrNoSession
	}

	return token, nil
}

// expiresAt accepts unix timestamps in seconds or milliseconds and RFC 3339 strings.
func expiresAt(res gjson.Result) time.Time {
	const millisThreshold = 1e12

	switch res.Type {
	case gjson.Number:
		if res.Num > millisThreshold {
			return time.UnixMilli(res.Int())
		}

		return time.Unix(res.Int(), 0)
	case gjson.String:
		if ts, err := time.Parse(time.RFC3339, res.String()); err == nil {
			return ts
		}
	default:
	}

	return time.Time{}
}

func (s *sideCar) cachedToken(ctx context.Context, key string) (Token, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return Token{}, false
	}

	var token Token
	if err = json.Unmarshal(raw, &token); err != nil {
		return Token{}, false
	}

	if !token.ExpiresAt.IsZero() && !token.ExpiresAt.After(time.Now()) {
		return Token{}, false
	}

	return token, true
}

func (s *sideCar) cacheToken(ctx context.Context, key string, token Token) {
	ttl := s.cacheTTL
	if !token.ExpiresAt.IsZero() {
		ttl = min(ttl, time.Until(token.ExpiresAt))
	}

	if ttl <= 0 {
		return
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return
	}

	if err = s.cache.Set(ctx, key, raw, ttl); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Failed to cache session token")
	}
}

func cacheKey(cookie string) string {
	hash := sha256.Sum256(stringx.ToBytes(cookie))

	return "session:" + hex.EncodeToString(hash[:])
}
