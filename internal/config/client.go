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

// ClientConfig configures the api client used by the call command.
type ClientConfig struct {
	BaseURL       string        `koanf:"base_url"       validate:"required,url"`
	Timeout       time.Duration `koanf:"timeout"        validate:"gt=0"`
	RetryAttempts int           `koanf:"retry_attempts" validate:"gte=0"`
	RetryDelay    time.Duration `koanf:"retry_delay"    validate:"gte=0"`
	CSRFHeader    string        `koanf:"csrf_header"`
	CSRFCookie    string        `koanf:"csrf_cookie"`
	Development   bool          `koanf:"development"`
}
