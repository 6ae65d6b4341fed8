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

// Package cachepolicy maps api requests to the Cache-Control profile of their responses.
package cachepolicy

import (
	"net/http"
	"strings"
	"time"
)

type Policy struct {
	Name                 string
	MaxAge               time.Duration
	StaleWhileRevalidate time.Duration
	CacheControl         string
}

//nolint:gochecknoglobals
var (
	Static = Policy{
		Name:                 "STATIC",
		MaxAge:               30 * time.Minute,
		StaleWhileRevalidate: time.Hour,
		CacheControl:         "public, max-age=1800, stale-while-revalidate=3600",
	}
	Moderate = Policy{
		Name:                 "MODERATE",
		MaxAge:               time.Minute,
		StaleWhileRevalidate: 5 * time.Minute,
		CacheControl:         "public, max-age=60, stale-while-revalidate=300",
	}
	Dynamic = Policy{
		Name:                 "DYNAMIC",
		MaxAge:               10 * time.Second,
		StaleWhileRevalidate: 30 * time.Second,
		CacheControl:         "public, max-age=10, stale-while-revalidate=30",
	}
	Private = Policy{
		Name:         "PRIVATE",
		CacheControl: "private, no-cache, no-store, must-revalidate",
	}
	NoCache = Policy{
		Name:         "NO_CACHE",
		CacheControl: "no-store, no-cache, must-revalidate, proxy-revalidate",
	}
)

type rule struct {
	fragments []string
	policy    Policy
}

// the order matters. A path matching fragments of multiple rules gets the policy of the first one.
//
//nolint:gochecknoglobals
var rules = []rule{
	{fragments: []string{"categories", "settings"}, policy: Static},
	{fragments: []string{"products", "customers"}, policy: Moderate},
	{fragments: []string{"orders", "inventory", "analytics"}, policy: Dynamic},
	{fragments: []string{"me", "profile", "cart", "staff"}, policy: Private},
}

// Select returns the policy for a request with the given path and method. Only GET responses
// are ever cacheable. Fragments are matched as plain substrings of the path.
func Select(path, method string) Policy {
	if method != http.MethodGet {
		return NoCache
	}

	for _, r := range rules {
		for _, fragment := range r.fragments {
			if strings.Contains(path, fragment) {
				return r.policy
			}
		}
	}

	return Moderate
}

// ByName resolves a policy by its name, e.g. STATIC.
func ByName(name string) (Policy, bool) {
	for _, policy := range []Policy{Static, Moderate, Dynamic, Private, NoCache} {
		if strings.EqualFold(policy.Name, name) {
			return policy, true
		}
	}

	return Policy{}, false
}

func (p Policy) String() string { return p.Name }
