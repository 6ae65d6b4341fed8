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

// SessionConfig configures the lookup of access tokens from the authentication side-car for
// requests, which do not carry an Authorization header.
type SessionConfig struct {
	URL      string        `koanf:"url"       validate:"omitempty,url"`
	Path     string        `koanf:"path"      validate:"required,startswith=/"`
	Timeout  time.Duration `koanf:"timeout"   validate:"gt=0"`
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
	Retry    *RetryConfig  `koanf:"retry,omitempty"`
}

func (c SessionConfig) Enabled() bool { return len(c.URL) != 0 }

type RetryConfig struct {
	MaxRetries int           `koanf:"max_retries" validate:"gte=0"`
	MinBackoff time.Duration `koanf:"min_backoff" validate:"gte=0"`
	MaxBackoff time.Duration `koanf:"max_backoff" validate:"gtefield=MinBackoff"`
}
