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

// Package claims recovers the identity claims carried in the payload of a bearer token and relays
// them to downstream services as x-jwt-claim-* headers.
//
// Tokens are NOT verified here. There is no signing key available to this process, so neither the
// signature nor exp, iss or aud are checked. Authenticity is enforced by the edge proxy or by the
// downstream services themselves. For that reason Claims offers no way to read claim values and
// must never be used to take any decision locally.
package claims

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

const (
	HeaderSub               = "x-jwt-claim-sub"
	HeaderTenantID          = "x-jwt-claim-tenant-id"
	HeaderStaffID           = "x-jwt-claim-staff-id"
	HeaderVendorID          = "x-jwt-claim-vendor-id"
	HeaderEmail             = "x-jwt-claim-email"
	HeaderPreferredUsername = "x-jwt-claim-preferred-username"
	HeaderRoles             = "x-jwt-claim-roles"
	HeaderRealmRoles        = "x-jwt-claim-realm-roles"
)

// relayed claims (gjson paths) and the headers they are written to.
//
//nolint:gochecknoglobals
var relayed = []struct {
	path   string
	header string
}{
	{path: "sub", header: HeaderSub},
	{path: "tenant_id", header: HeaderTenantID},
	{path: "staff_id", header: HeaderStaffID},
	{path: "vendor_id", header: HeaderVendorID},
	{path: "email", header: HeaderEmail},
	{path: "preferred_username", header: HeaderPreferredUsername},
	{path: "roles", header: HeaderRoles},
	{path: "realm_access.roles", header: HeaderRealmRoles},
}

// Claims holds the decoded payload of a token.
type Claims struct {
	raw     []byte
	payload map[string]any
}

// Decode decodes the payload segment of the given token. The token can be given either raw or as
// the value of an Authorization header using the Bearer scheme. The second return value is false
// if the token is not made of exactly three segments or the payload is not a base64url encoded
// JSON object.
func Decode(token string) (Claims, bool) {
	token = strings.TrimSpace(token)
	if len(token) > len("bearer ") && strings.EqualFold(token[:len("bearer ")], "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}

	segments := strings.Split(token, ".")
	if len(segments) != 3 { //nolint:mnd
		return Claims{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(normalize(segments[1]))
	if err != nil {
		return Claims{}, false
	}

	var payload map[string]any
	if err = json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return Claims{}, false
	}

	return Claims{raw: raw, payload: payload}, true
}

// Encode renders the given claims as a token payload segment.
func Encode(claims map[string]any) string {
	raw, err := json.Marshal(claims)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// RelayTo writes an x-jwt-claim-* header for every relayed claim present in the payload. Array
// values are joined with commas. Existing values of these headers are replaced.
func (c Claims) RelayTo(header http.Header) {
	if len(c.raw) == 0 {
		return
	}

	for _, claim := range relayed {
		res := gjson.GetBytes(c.raw, claim.path)
		if !res.Exists() || res.Type == gjson.Null {
			continue
		}

		if value := render(res); len(value) != 0 {
			header.Set(claim.header, value)
		}
	}
}

// Empty returns true if no payload could be decoded.
func (c Claims) Empty() bool { return len(c.payload) == 0 }

func render(res gjson.Result) string {
	if !res.IsArray() {
		return res.String()
	}

	values := make([]string, 0, len(res.Array()))
	for _, elem := range res.Array() {
		if elem.Type != gjson.Null {
			values = append(values, elem.String())
		}
	}

	return strings.Join(values, ",")
}

// normalize turns a base64url encoded segment into padded standard base64.
func normalize(segment string) string {
	segment = strings.NewReplacer("-", "+", "_", "/").Replace(segment)

	if rem := len(segment) % 4; rem != 0 { //nolint:mnd
		segment += strings.Repeat("=", 4-rem) //nolint:mnd
	}

	return segment
}
