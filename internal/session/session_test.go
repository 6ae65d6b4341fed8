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

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cache/memory"
	"github.com/storeforge/adminbff/internal/config"
)

func TestSideCarLookup(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		uc      string
		cookie  string
		handler func(t *testing.T) http.HandlerFunc
		assert  func(t *testing.T, token Token, err error, calls int32)
	}{
		{
			uc:     "no cookie",
			cookie: "  ",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, _ *http.Request) { rw.WriteHeader(http.StatusOK) }
			},
			assert: func(t *testing.T, _ Token, err error, calls int32) {
				t.Helper()

				require.ErrorIs(t, err, ErrNoSession)
				assert.Zero(t, calls)
			},
		},
		{
			uc:     "session found",
			cookie: "session=abc",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, req *http.Request) {
					assert.Equal(t, http.MethodGet, req.Method)
					assert.Equal(t, "/internal/get-token", req.URL.Path)
					assert.Equal(t, "session=abc", req.Header.Get("Cookie"))

					rw.Header().Set("Content-Type", "application/json")
					_, err := rw.Write([]byte(`{"access_token":"tkn","user_id":"u1","tenant_id":"t1",` +
						`"tenant_slug":"acme","expires_at":"2099-01-01T00:00:00Z"}`))
					assert.NoError(t, err)
				}
			},
			assert: func(t *testing.T, token Token, err error, calls int32) {
				t.Helper()

				require.NoError(t, err)
				assert.Equal(t, int32(1), calls)
				assert.Equal(t, "tkn", token.AccessToken)
				assert.Equal(t, "u1", token.UserID)
				assert.Equal(t, "t1", token.TenantID)
				assert.Equal(t, "acme", token.TenantSlug)
				assert.Equal(t, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), token.ExpiresAt.UTC())
			},
		},
		{
			uc:     "side-car does not know the session",
			cookie: "session=abc",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, _ *http.Request) { rw.WriteHeader(http.StatusUnauthorized) }
			},
			assert: func(t *testing.T, _ Token, err error, _ int32) {
				t.Helper()

				require.ErrorIs(t, err, ErrNoSession)
			},
		},
		{
			uc:     "response without access token",
			cookie: "session=abc",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, _ *http.Request) {
					_, err := rw.Write([]byte(`{"user_id":"u1"}`))
					assert.NoError(t, err)
				}
			},
			assert: func(t *testing.T, _ Token, err error, _ int32) {
				t.Helper()

				require.ErrorIs(t, err, ErrNoSession)
			},
		},
		{
			uc:     "side-car fails",
			cookie: "session=abc",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, _ *http.Request) { rw.WriteHeader(http.StatusBadGateway) }
			},
			assert: func(t *testing.T, _ Token, err error, _ int32) {
				t.Helper()

				require.ErrorIs(t, err, bff.ErrCommunication)
				require.NotErrorIs(t, err, ErrNoSession)
				require.ErrorContains(t, err, "502")
			},
		},
		{
			uc:     "side-car responds with garbage",
			cookie: "session=abc",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, _ *http.Request) {
					_, err := rw.Write([]byte(`upstream connect error`))
					assert.NoError(t, err)
				}
			},
			assert: func(t *testing.T, _ Token, err error, _ int32) {
				t.Helper()

				require.ErrorIs(t, err, bff.ErrCommunication)
				require.ErrorContains(t, err, "invalid json")
			},
		},
		{
			uc:     "side-car hangs",
			cookie: "session=abc",
			handler: func(t *testing.T) http.HandlerFunc {
				t.Helper()

				return func(rw http.ResponseWriter, req *http.Request) {
					select {
					case <-req.Context().Done():
					case <-time.After(2 * time.Second):
					}

					rw.WriteHeader(http.StatusOK)
				}
			},
			assert: func(t *testing.T, _ Token, err error, _ int32) {
				t.Helper()

				require.ErrorIs(t, err, bff.ErrCommunicationTimeout)
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			t.Parallel()

			// GIVEN
			var calls atomic.Int32

			handler := tc.handler(t)
			srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				calls.Add(1)
				handler(rw, req)
			}))
			defer srv.Close()

			lookup := NewLookup(config.SessionConfig{
				URL:     srv.URL,
				Path:    "/internal/get-token",
				Timeout: 200 * time.Millisecond,
			}, nil)

			// WHEN
			token, err := lookup.Lookup(context.Background(), tc.cookie)

			// THEN
			tc.assert(t, token, err, calls.Load())
		})
	}
}

func TestSideCarLookupCachesTokens(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		uc            string
		expiresAt     func() string
		cacheTTL      time.Duration
		expectedCalls int32
	}{
		{
			uc:            "token without expiry is cached for the configured ttl",
			expiresAt:     func() string { return "null" },
			cacheTTL:      time.Minute,
			expectedCalls: 1,
		},
		{
			uc: "token with expiry as unix timestamp is cached",
			expiresAt: func() string {
				return strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)
			},
			cacheTTL:      time.Minute,
			expectedCalls: 1,
		},
		{
			uc: "expired token is not cached",
			expiresAt: func() string {
				return strconv.FormatInt(time.Now().Add(-time.Minute).UnixMilli(), 10)
			},
			cacheTTL:      time.Minute,
			expectedCalls: 3,
		},
		{
			uc:            "caching disabled",
			expiresAt:     func() string { return "null" },
			expectedCalls: 3,
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			t.Parallel()

			// GIVEN
			var calls atomic.Int32

			srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
				calls.Add(1)

				_, err := rw.Write([]byte(`{"access_token":"tkn","expires_at":` + tc.expiresAt() + `}`))
				assert.NoError(t, err)
			}))
			defer srv.Close()

			cch, err := memory.NewCache(nil, nil)
			require.NoError(t, err)

			lookup := NewLookup(config.SessionConfig{
				URL:      srv.URL + "/",
				Path:     "/internal/get-token",
				Timeout:  time.Second,
				CacheTTL: tc.cacheTTL,
			}, cch)

			// WHEN
			for range 3 {
				token, err := lookup.Lookup(context.Background(), "session=abc")

				require.NoError(t, err)
				assert.Equal(t, "tkn", token.AccessToken)
			}

			// THEN
			assert.Equal(t, tc.expectedCalls, calls.Load())
		})
	}
}

func TestDisabledLookup(t *testing.T) {
	t.Parallel()

	// GIVEN
	lookup := NewLookup(config.SessionConfig{Path: "/internal/get-token", Timeout: time.Second}, nil)

	// WHEN
	_, err := lookup.Lookup(context.Background(), "session=abc")

	// THEN
	require.ErrorIs(t, err, ErrNoSession)
}

func TestSideCarLookupWithRetries(t *testing.T) {
	t.Parallel()

	// GIVEN
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			rw.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, err := rw.Write([]byte(`{"access_token":"tkn"}`))
		assert.NoError(t, err)
	}))
	defer srv.Close()

	lookup := NewLookup(config.SessionConfig{
		URL:     srv.URL,
		Path:    "/internal/get-token",
		Timeout: 2 * time.Second,
		Retry: &config.RetryConfig{
			MaxRetries: 2,
			MinBackoff: 10 * time.Millisecond,
			MaxBackoff: 50 * time.Millisecond,
		},
	}, nil)

	// WHEN
	token, err := lookup.Lookup(context.Background(), "session=abc")

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "tkn", token.AccessToken)
	assert.Equal(t, int32(2), calls.Load())
}
