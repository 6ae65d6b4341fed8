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

package apiclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineComposition(t *testing.T) {
	t.Parallel()

	// GIVEN
	base := NewPipeline(Stage{Name: "a"}, Stage{Name: "b"})

	// WHEN
	extended := base.With(Stage{Name: "c"}, Stage{Name: "a", OnRequest: func(_ context.Context, req *http.Request) error {
		req.Header.Set("X-Replaced", "yes")

		return nil
	}})
	reduced := extended.Without("b")

	// THEN
	assert.Equal(t, []string{"a", "b"}, base.Names())
	assert.Equal(t, []string{"a", "b", "c"}, extended.Names())
	assert.Equal(t, []string{"a", "c"}, reduced.Names())

	req, err := http.NewRequestWithContext(context.TODO(), http.MethodGet, "http://bff.local/api", nil)
	require.NoError(t, err)

	require.NoError(t, base.onRequest(context.TODO(), req))
	assert.Empty(t, req.Header.Get("X-Replaced"))

	require.NoError(t, reduced.onRequest(context.TODO(), req))
	assert.Equal(t, "yes", req.Header.Get("X-Replaced"))
}

func TestPipelineStopsOnRequestError(t *testing.T) {
	t.Parallel()

	// GIVEN
	var called []string

	pipeline := NewPipeline(
		Stage{Name: "first", OnRequest: func(_ context.Context, _ *http.Request) error {
			called = append(called, "first")

			return &Error{Code: "FAILED"}
		}},
		Stage{Name: "second", OnRequest: func(_ context.Context, _ *http.Request) error {
			called = append(called, "second")

			return nil
		}},
	)

	req, err := http.NewRequestWithContext(context.TODO(), http.MethodGet, "http://bff.local/api", nil)
	require.NoError(t, err)

	// WHEN
	err = pipeline.onRequest(context.TODO(), req)

	// THEN
	require.Error(t, err)
	assert.Equal(t, []string{"first"}, called)
}

func TestAuthStage(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		uc     string
		ctx    context.Context
		assert func(t *testing.T, header http.Header)
	}{
		{
			uc:  "without session",
			ctx: context.Background(),
			assert: func(t *testing.T, header http.Header) {
				t.Helper()

				assert.Empty(t, header)
			},
		},
		{
			uc: "with full session",
			ctx: WithSession(context.Background(), Session{
				Token: "tkn", TenantID: "t1", VendorID: "v1", UserID: "u1",
			}),
			assert: func(t *testing.T, header http.Header) {
				t.Helper()

				assert.Equal(t, "Bearer tkn", header.Get("Authorization"))
				assert.Equal(t, "t1", header.Get("X-Tenant-ID"))
				assert.Equal(t, "v1", header.Get("X-Vendor-ID"))
				assert.Equal(t, "u1", header.Get("X-User-ID"))
			},
		},
		{
			uc:  "with tenant only",
			ctx: WithSession(context.Background(), Session{TenantID: "t2"}),
			assert: func(t *testing.T, header http.Header) {
				t.Helper()

				assert.Len(t, header, 1)
				assert.Equal(t, "t2", header.Get("X-Tenant-ID"))
			},
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			t.Parallel()

			// GIVEN
			req, err := http.NewRequestWithContext(tc.ctx, http.MethodGet, "http://bff.local/api", nil)
			require.NoError(t, err)

			// WHEN
			err = AuthStage().OnRequest(tc.ctx, req)

			// THEN
			require.NoError(t, err)
			tc.assert(t, req.Header)
		})
	}
}
