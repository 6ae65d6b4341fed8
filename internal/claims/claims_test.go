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

package claims

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-verified-anyway"))
	require.NoError(t, err)

	return token
}

func TestDecode(t *testing.T) {
	t.Parallel()

	validPayload := Encode(map[string]any{"sub": "foo"})

	for _, tc := range []struct {
		uc     string
		token  func(t *testing.T) string
		assert func(t *testing.T, claims Claims, ok bool)
	}{
		{
			uc: "signed token",
			token: func(t *testing.T) string {
				t.Helper()

				return newToken(t, jwt.MapClaims{"sub": "u1", "tenant_id": "t1", "roles": []string{"admin"}})
			},
			assert: func(t *testing.T, claims Claims, ok bool) {
				t.Helper()

				require.True(t, ok)
				assert.Equal(t, map[string]any{"sub": "u1", "tenant_id": "t1", "roles": []any{"admin"}}, claims.payload)
			},
		},
		{
			uc: "authorization header value",
			token: func(t *testing.T) string {
				t.Helper()

				return "Bearer " + newToken(t, jwt.MapClaims{"sub": "u1"})
			},
			assert: func(t *testing.T, claims Claims, ok bool) {
				t.Helper()

				require.True(t, ok)
				assert.Equal(t, map[string]any{"sub": "u1"}, claims.payload)
			},
		},
		{
			uc: "lower case scheme",
			token: func(t *testing.T) string {
				t.Helper()

				return "bearer x." + validPayload + ".y"
			},
			assert: func(t *testing.T, claims Claims, ok bool) {
				t.Helper()

				require.True(t, ok)
				assert.Equal(t, map[string]any{"sub": "foo"}, claims.payload)
			},
		},
		{
			uc: "header and signature segments are not looked at",
			token: func(t *testing.T) string {
				t.Helper()

				return "!!!." + validPayload + "."
			},
			assert: func(t *testing.T, claims Claims, ok bool) {
				t.Helper()

				require.True(t, ok)
				assert.False(t, claims.Empty())
			},
		},
		{
			uc: "padded payload",
			token: func(t *testing.T) string {
				t.Helper()

				return "a." + base64.URLEncoding.EncodeToString([]byte(`{"sub":"pad"}`)) + ".b"
			},
			assert: func(t *testing.T, claims Claims, ok bool) {
				t.Helper()

				require.True(t, ok)
				assert.Equal(t, map[string]any{"sub": "pad"}, claims.payload)
			},
		},
		{
			uc:    "empty string",
			token: func(t *testing.T) string { t.Helper(); return "" },
			assert: func(t *testing.T, claims Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
				assert.True(t, claims.Empty())
			},
		},
		{
			uc:    "bearer scheme only",
			token: func(t *testing.T) string { t.Helper(); return "Bearer " },
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
		{
			uc:    "two segments",
			token: func(t *testing.T) string { t.Helper(); return "a." + validPayload },
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
		{
			uc:    "four segments",
			token: func(t *testing.T) string { t.Helper(); return "a." + validPayload + ".b.c" },
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
		{
			uc:    "invalid base64",
			token: func(t *testing.T) string { t.Helper(); return "a.$%&/.b" },
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
		{
			uc: "payload is not json",
			token: func(t *testing.T) string {
				t.Helper()

				return "a." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".b"
			},
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
		{
			uc: "payload is a json array",
			token: func(t *testing.T) string {
				t.Helper()

				return "a." + base64.RawURLEncoding.EncodeToString([]byte(`["sub"]`)) + ".b"
			},
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
		{
			uc: "payload is json null",
			token: func(t *testing.T) string {
				t.Helper()

				return "a." + base64.RawURLEncoding.EncodeToString([]byte(`null`)) + ".b"
			},
			assert: func(t *testing.T, _ Claims, ok bool) {
				t.Helper()

				require.False(t, ok)
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			// GIVEN
			token := tc.token(t)

			// WHEN
			var (
				claims Claims
				ok     bool
			)

			require.NotPanics(t, func() { claims, ok = Decode(token) })

			// THEN
			tc.assert(t, claims, ok)
		})
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	t.Parallel()

	for _, token := range []string{
		"", ".", "..", "...", "Bearer", "Bearer ..", "a.=.b", "a.====.b", "a.\x00.b",
		"a." + strings.Repeat("A", 1025) + ".b", "a.e30.b", "a.bnVsbA.b", "a.MQ.b",
	} {
		require.NotPanics(t, func() { Decode(token) }, token)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for uc, original := range map[string]map[string]any{
		"empty object": {},
		"flat claims": {
			"sub":                "5a9c8f0e",
			"tenant_id":          "t-1",
			"email":              "jane@example.com",
			"email_verified":     true,
			"exp":                float64(1893456000),
			"preferred_username": "jane",
		},
		"nested claims": {
			"sub":          "u",
			"roles":        []any{"admin", "editor"},
			"realm_access": map[string]any{"roles": []any{"offline_access"}},
			"meta":         map[string]any{"ratio": 0.5, "tags": []any{}},
		},
		"characters requiring url safe encoding": {
			"sub": "??>>~~", "name": "ÄÖÜ ß",
		},
	} {
		t.Run(uc, func(t *testing.T) {
			// GIVEN
			token := "header." + Encode(original) + ".signature"

			// WHEN
			claims, ok := Decode(token)

			// THEN
			require.True(t, ok)
			assert.Equal(t, original, claims.payload)
		})
	}
}

func TestClaimsRelayTo(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		uc       string
		claims   map[string]any
		expected http.Header
	}{
		{
			uc: "all relayed claims",
			claims: map[string]any{
				"sub":                "u1",
				"tenant_id":          "t2",
				"staff_id":           "s3",
				"vendor_id":          "v4",
				"email":              "jane@example.com",
				"preferred_username": "jane",
				"roles":              []string{"admin", "editor"},
				"realm_access":       map[string]any{"roles": []string{"offline_access", "uma_authorization"}},
				"iss":                "https://idp.example.com",
			},
			expected: http.Header{
				"X-Jwt-Claim-Sub":                {"u1"},
				"X-Jwt-Claim-Tenant-Id":          {"t2"},
				"X-Jwt-Claim-Staff-Id":           {"s3"},
				"X-Jwt-Claim-Vendor-Id":          {"v4"},
				"X-Jwt-Claim-Email":              {"jane@example.com"},
				"X-Jwt-Claim-Preferred-Username": {"jane"},
				"X-Jwt-Claim-Roles":              {"admin,editor"},
				"X-Jwt-Claim-Realm-Roles":        {"offline_access,uma_authorization"},
			},
		},
		{
			uc:       "scalar roles and numeric ids",
			claims:   map[string]any{"roles": "admin", "tenant_id": 42},
			expected: http.Header{"X-Jwt-Claim-Roles": {"admin"}, "X-Jwt-Claim-Tenant-Id": {"42"}},
		},
		{
			uc:       "null and empty values are skipped",
			claims:   map[string]any{"sub": nil, "email": "", "roles": []string{}},
			expected: http.Header{},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			// GIVEN
			claims, ok := Decode("a." + Encode(tc.claims) + ".b")
			require.True(t, ok)

			header := http.Header{}

			// WHEN
			claims.RelayTo(header)

			// THEN
			assert.Equal(t, tc.expected, header)
		})
	}
}

func TestEmptyClaimsRelayNothing(t *testing.T) {
	t.Parallel()

	// GIVEN
	claims, ok := Decode("garbage")
	require.False(t, ok)

	header := http.Header{}

	// WHEN
	claims.RelayTo(header)

	// THEN
	assert.Empty(t, header)
}
