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

package api

import (
	"net/http"
	"time"

	"github.com/storeforge/adminbff/internal/cachepolicy"
)

// Target identifies the downstream resource a request is proxied to.
type Target struct {
	// Name of the route, used as log context and metric label.
	Name    string
	BaseURL string
	Path    string
}

type options struct {
	policy  *cachepolicy.Policy
	timeout time.Duration
	headers http.Header
}

type Option func(*options)

// WithCachePolicy overrides the cache policy otherwise selected by the path of GET requests.
func WithCachePolicy(policy cachepolicy.Policy) Option {
	return func(o *options) {
		o.policy = &policy
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHeaders adds headers to the downstream request, overriding the composed ones.
func WithHeaders(headers http.Header) Option {
	return func(o *options) {
		if o.headers == nil {
			o.headers = http.Header{}
		}

		for name, values := range headers {
			for _, value := range values {
				o.headers.Add(name, value)
			}
		}
	}
}
