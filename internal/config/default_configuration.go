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

package config

import (
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/rs/zerolog"
)

const (
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 30 * time.Second
	defaultIdleTimeout    = 2 * time.Minute
	defaultBufferSize     = 4 * bytesize.KB
	defaultServePort      = 3000
	defaultManagementPort = 3001

	defaultSessionTimeout  = 3 * time.Second
	defaultSessionCacheTTL = 5 * time.Minute
	defaultBackendTimeout  = 15 * time.Second

	defaultClientTimeout       = 30 * time.Second
	defaultClientRetryDelay    = 1 * time.Second
	defaultClientRetryAttempts = 3
)

func defaultConfig() Configuration {
	return Configuration{
		Serve: ServeConfig{
			Port: defaultServePort,
			Timeout: Timeout{
				Read:  defaultReadTimeout,
				Write: defaultWriteTimeout,
				Idle:  defaultIdleTimeout,
			},
			BufferLimit: BufferLimit{
				Read:  defaultBufferSize,
				Write: defaultBufferSize,
			},
		},
		Management: ServeConfig{
			Port: defaultManagementPort,
			Timeout: Timeout{
				Read:  defaultReadTimeout,
				Write: defaultWriteTimeout,
				Idle:  defaultIdleTimeout,
			},
			BufferLimit: BufferLimit{
				Read:  defaultBufferSize,
				Write: defaultBufferSize,
			},
		},
		Log: LoggingConfig{
			Level:  zerolog.ErrorLevel,
			Format: LogTextFormat,
		},
		Metrics: MetricsConfig{Enabled: true},
		Cache:   CacheConfig{Type: "in-memory"},
		Session: SessionConfig{
			Path:     "/internal/get-token",
			Timeout:  defaultSessionTimeout,
			CacheTTL: defaultSessionCacheTTL,
		},
		Backend: BackendConfig{
			Timeout: defaultBackendTimeout,
		},
		CSRF: CSRFConfig{
			Enabled:    true,
			CookieName: "csrf_token",
			HeaderName: "X-CSRF-Token",
			Secure:     true,
		},
		Client: ClientConfig{
			BaseURL:       "http://127.0.0.1:3000",
			Timeout:       defaultClientTimeout,
			RetryAttempts: defaultClientRetryAttempts,
			RetryDelay:    defaultClientRetryDelay,
			CSRFHeader:    "X-CSRF-Token",
			CSRFCookie:    "csrf_token",
		},
	}
}
