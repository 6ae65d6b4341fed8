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

// CSRFConfig configures the double submit cookie protection of state changing api calls.
type CSRFConfig struct {
	Enabled    bool   `koanf:"enabled"`
	CookieName string `koanf:"cookie_name" validate:"required_if=Enabled true"`
	HeaderName string `koanf:"header_name" validate:"required_if=Enabled true"`
	Secure     bool   `koanf:"secure"`
}
