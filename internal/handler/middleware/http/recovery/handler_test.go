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

package recovery

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
)

func TestRecoveryHandler(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		uc      string
		handler http.HandlerFunc
		expCode int
	}{
		{
			uc:      "no panic",
			handler: func(rw http.ResponseWriter, _ *http.Request) { rw.WriteHeader(http.StatusAccepted) },
			expCode: http.StatusAccepted,
		},
		{
			uc:      "panic with error",
			handler: func(_ http.ResponseWriter, _ *http.Request) { panic(errors.New("test error")) },
			expCode: http.StatusInternalServerError,
		},
		{
			uc:      "panic with string",
			handler: func(_ http.ResponseWriter, _ *http.Request) { panic("test error") },
			expCode: http.StatusInternalServerError,
		},
	} {
		t.Run(tc.uc, func(t *testing.T) {
			// GIVEN
			rec := httptest.NewRecorder()
			handler := New(errorhandler.New())(tc.handler)

			// WHEN
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

			// THEN
			assert.Equal(t, tc.expCode, rec.Code)

			if tc.expCode == http.StatusInternalServerError {
				assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
			}
		})
	}
}

func TestRecoveryHandlerRepanicsOnAbort(t *testing.T) {
	t.Parallel()

	handler := New(errorhandler.New())(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
