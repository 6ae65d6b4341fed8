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

package prometheus

import (
	"net/url"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/storeforge/adminbff/internal/cachepolicy"
	"github.com/storeforge/adminbff/internal/config"
)

type routeInfoCollector struct {
	desc   *prometheus.Desc
	routes map[string]config.RouteConfig
}

// NewRouteInfoCollector exposes one info sample per configured route.
func NewRouteInfoCollector(routes map[string]config.RouteConfig) prometheus.Collector {
	return &routeInfoCollector{
		desc: prometheus.NewDesc(
			"route_info",
			"Routes the API service forwards to.",
			[]string{"route", "downstream_host", "cache_policy"},
			nil,
		),
		routes: routes,
	}
}

func (c *routeInfoCollector) Describe(ch chan<- *prometheus.Desc) { ch <- c.desc }

func (c *routeInfoCollector) Collect(ch chan<- prometheus.Metric) {
	names := make([]string, 0, len(c.routes))
	for name := range c.routes {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		route := c.routes[name]

		var host string
		if u, err := url.Parse(route.URL); err == nil {
			host = u.Host
		}

		policy := "path_based"
		if p, ok := cachepolicy.ByName(route.CachePolicy); ok {
			policy = p.Name
		}

		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1, name, host, policy)
	}
}
