// Copyright 2025 Dimitrij Drus <dadrus@gmx.de>
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

package httpcache

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/pquerna/cachecontrol"
	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/cache"
	"github.com/storeforge/adminbff/internal/x/stringx"
)

// request headers, which scope a response to a user or a tenant and are therefore part of the
// cache key.
//
//nolint:gochecknoglobals
var keyHeaders = []string{
	"Authorization", "Cookie", "X-Tenant-ID", "X-Vendor-ID", "X-User-ID", "x-jwt-claim-tenant-id",
}

// RoundTripper caches responses according to the caching directives the server sent.
type RoundTripper struct {
	Transport       http.RoundTripper
	Cache           cache.Cache
	DefaultCacheTTL time.Duration
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return rt.Transport.RoundTrip(req)
	}

	key := cacheKey(req)

	if resp, err := rt.cachedResponse(req, key); err == nil {
		return resp, nil
	}

	resp, err := rt.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	rt.cacheResponse(req, resp, key)

	return resp, nil
}

func (rt *RoundTripper) cachedResponse(req *http.Request, key string) (*http.Response, error) {
	respDump, err := rt.Cache.Get(req.Context(), key)
	if err != nil {
		return nil, err
	}

	return http.ReadResponse(bufio.NewReader(bytes.NewReader(respDump)), req)
}

func (rt *RoundTripper) cacheResponse(req *http.Request, resp *http.Response, key string) {
	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{PrivateCache: true})
	if err != nil || len(reasons) != 0 {
		return
	}

	if expires.IsZero() {
		if rt.DefaultCacheTTL == 0 {
			return
		}

		expires = time.Now().Add(rt.DefaultCacheTTL)
	}

	ttl := time.Until(expires)
	if ttl <= 0 {
		return
	}

	respDump, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return
	}

	if err = rt.Cache.Set(req.Context(), key, respDump, ttl); err != nil {
		zerolog.Ctx(req.Context()).Warn().Err(err).Msg("Failed to cache response")
	}
}

func cacheKey(req *http.Request) string {
	hash := sha256.New()

	hash.Write(stringx.ToBytes("RFC 7234"))
	hash.Write(stringx.ToBytes(req.URL.String()))
	hash.Write(stringx.ToBytes(req.Method))

	for _, name := range keyHeaders {
		if value := req.Header.Get(name); len(value) != 0 {
			hash.Write(stringx.ToBytes(name))
			hash.Write(stringx.ToBytes(strings.TrimSpace(value)))
		}
	}

	return hex.EncodeToString(hash.Sum(nil))
}
