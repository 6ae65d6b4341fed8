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

package requestid

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	HeaderName = "X-Request-ID"

	maxLength = 128
)

// New makes sure every request carries a request id. Ids sent by the client are kept unless
// they are overly long. The id is echoed in the response.
func New() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			id := req.Header.Get(HeaderName)
			if len(id) == 0 || len(id) > maxLength {
				id = uuid.NewString()
				req.Header.Set(HeaderName, id)
			}

			rw.Header().Set(HeaderName, id)

			next.ServeHTTP(rw, req)
		})
	}
}
