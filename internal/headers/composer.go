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

// Package headers composes the header set sent with proxied calls to downstream services.
package headers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/claims"
	"github.com/storeforge/adminbff/internal/session"
)

const (
	Authorization = "Authorization"
	ContentType   = "Content-Type"
	Cookie        = "Cookie"
	TenantID      = "X-Tenant-ID"
	VendorID      = "X-Vendor-ID"
	UserID        = "X-User-ID"
	UserEmail     = "X-User-Email"
	RequestID     = "X-Request-ID"
)

// headers taken over from the incoming request as they are. They are the most explicit signal
// and win over values derived from the session.
//
//nolint:gochecknoglobals
var forwarded = []string{TenantID, VendorID, UserID, UserEmail, RequestID}

type Composer struct {
	lookup session.Lookup
}

func NewComposer(lookup session.Lookup) *Composer {
	return &Composer{lookup: lookup}
}

// Compose builds the headers for a call to a downstream service on behalf of the given incoming
// request (which can be nil). Values are applied in the following order, later ones overriding
// earlier ones:
//
//  1. Content-Type: application/json
//  2. Authorization and x-jwt-claim-* headers from the Authorization header of the request, or
//     if there is none, from the session the request cookies belong to (including X-Tenant-ID
//     and X-User-ID of that session)
//  3. X-Tenant-ID, X-Vendor-ID, X-User-ID, X-User-Email and X-Request-ID from the request
//  4. x-jwt-claim-tenant-id from X-Tenant-ID if not set otherwise
//  5. the additional headers
//
// Compose never fails. Failing session lookups are logged and treated as if there was no session.
func (c *Composer) Compose(ctx context.Context, req *http.Request, additional http.Header) http.Header {
	header := http.Header{}
	header.Set(ContentType, "application/json")

	if req != nil {
		if auth := req.Header.Get(Authorization); len(auth) != 0 {
			header.Set(Authorization, auth)
			relayClaims(header, auth)
		} else {
			c.applySession(ctx, header, req.Header.Get(Cookie))
		}

		for _, name := range forwarded {
			if value := req.Header.Get(name); len(value) != 0 {
				header.Set(name, value)
			}
		}
	}

	copyForwardTenant(header)

	for name, values := range additional {
		header.Del(name)

		for _, value := range values {
			header.Add(name, value)
		}
	}

	copyForwardTenant(header)

	return header
}

func (c *Composer) applySession(ctx context.Context, header http.Header, cookie string) {
	if c.lookup == nil || len(cookie) == 0 {
		return
	}

	logger := zerolog.Ctx(ctx)

	token, err := c.lookup.Lookup(ctx, cookie)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			logger.Debug().Msg("No session available for request")
		} else {
			logger.Warn().Err(err).Msg("Session lookup failed. Continuing without session")
		}

		return
	}

	header.Set(Authorization, "Bearer "+token.AccessToken)
	relayClaims(header, token.AccessToken)

	if len(token.TenantID) != 0 && len(header.Get(TenantID)) == 0 {
		header.Set(TenantID, token.TenantID)
	}

	if len(token.UserID) != 0 && len(header.Get(UserID)) == 0 {
		header.Set(UserID, token.UserID)
	}
}

func relayClaims(header http.Header, token string) {
	decoded, ok := claims.Decode(token)
	if !ok {
		return
	}

	decoded.RelayTo(header)

	if email := header.Get(claims.HeaderEmail); len(email) != 0 && len(header.Get(UserEmail)) == 0 {
		header.Set(UserEmail, email)
	}
}

// copyForwardTenant keeps the tenant context for downstream services, which only look at claim
// headers, if the call did not pass an edge authority injecting them.
func copyForwardTenant(header http.Header) {
	if tenant := header.Get(TenantID); len(tenant) != 0 && len(header.Get(claims.HeaderTenantID)) == 0 {
		header.Set(claims.HeaderTenantID, tenant)
	}
}
