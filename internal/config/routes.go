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

package config

import "time"

type BackendConfig struct {
	Timeout          time.Duration    `koanf:"timeout"           validate:"gt=0"`
	EnableHTTPCache  bool             `koanf:"enable_http_cache"`
	ConnectionsLimit ConnectionsLimit `koanf:"connections_limit"`
}

type ConnectionsLimit struct {
	MaxPerHost     int `koanf:"max_per_host"      validate:"gte=0"`
	MaxIdle        int `koanf:"max_idle"          validate:"gte=0"`
	MaxIdlePerHost int `koanf:"max_idle_per_host" validate:"gte=0"`
}

// RouteConfig maps the /api/<name>/... requests to a downstream service.
type RouteConfig struct {
	URL         string        `koanf:"url"          validate:"required,url"`
	Prefix      string        `koanf:"prefix"       validate:"omitempty,startswith=/"`
	CachePolicy string        `koanf:"cache_policy" validate:"omitempty,cache_policy"`
	Timeout     time.Duration `koanf:"timeout"      validate:"gte=0"`
}
