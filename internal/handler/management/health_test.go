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

package management

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
)

func TestHealthRequest(t *testing.T) {
	t.Parallel()

	// GIVEN
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, EndpointHealth, nil)

	// WHEN
	health().ServeHTTP(rec, req)

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthRequestWithMatchingETag(t *testing.T) {
	t.Parallel()

	// GIVEN
	handler := newManagementHandler(nil, errorhandler.New())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, EndpointHealth, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, EndpointHealth, nil)
	req.Header.Set("If-None-Match", tag)

	rec = httptest.NewRecorder()

	// WHEN
	handler.ServeHTTP(rec, req)

	// THEN
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}
