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
	"os"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cachepolicy"
	"github.com/storeforge/adminbff/internal/config/parser"
	"github.com/storeforge/adminbff/internal/validation"
	"github.com/storeforge/adminbff/internal/x/errorchain"
)

// AuthBFFInternalURLEnvVar names the variable the address of the authentication side-car is taken
// from if not configured explicitly.
const AuthBFFInternalURLEnvVar = "AUTH_BFF_INTERNAL_URL"

type (
	EnvVarPrefix      string
	ConfigurationPath string
)

type Configuration struct { //nolint:musttag
	Serve      ServeConfig            `koanf:"serve"`
	Management ServeConfig            `koanf:"management"`
	Log        LoggingConfig          `koanf:"log"`
	Metrics    MetricsConfig          `koanf:"metrics"`
	Cache      CacheConfig            `koanf:"cache"`
	Session    SessionConfig          `koanf:"session"`
	Backend    BackendConfig          `koanf:"backend"`
	Routes     map[string]RouteConfig `koanf:"routes"     validate:"dive"`
	CSRF       CSRFConfig             `koanf:"csrf"`
	Client     ClientConfig           `koanf:"client"`
}

func NewConfiguration(
	envPrefix EnvVarPrefix,
	configFile ConfigurationPath,
	validator validation.Validator,
) (*Configuration, error) {
	result := defaultConfig()

	err := parser.New(
		parser.WithDecodeHookFunc(logLevelDecodeHookFunc),
		parser.WithDecodeHookFunc(logFormatDecodeHookFunc),
		parser.WithDecodeHookFunc(StringToByteSizeHookFunc()),
		parser.WithConfigFile(string(configFile)),
		parser.WithDefaultConfigFilename("adminbff.yaml"),
		parser.WithConfigLookupDir("."),
		parser.WithConfigLookupDir("/etc/adminbff"),
		parser.WithEnvPrefix(string(envPrefix)),
		parser.WithConfigValidator(ValidateConfigSchema),
	).Load(&result)
	if err != nil {
		return nil, errorchain.NewWithMessage(bff.ErrConfiguration,
			"failed to load configuration").CausedBy(err)
	}

	if len(result.Session.URL) == 0 {
		result.Session.URL = os.Getenv(AuthBFFInternalURLEnvVar)
	}

	if err = validator.ValidateStruct(&result); err != nil {
		return nil, errorchain.NewWithMessage(bff.ErrConfiguration,
			"configuration is invalid").CausedBy(err)
	}

	return &result, nil
}

// NewValidator returns the validator used for the configuration. It knows how to check
// the names of cache policies used in route definitions.
func NewValidator() (validation.Validator, error) {
	return validation.NewValidator(
		validation.WithTagValidator(cachePolicyValidator{}),
		validation.WithErrorTranslator(cachePolicyValidator{}),
	)
}

func (c *Configuration) LogConfig() LoggingConfig { return c.Log }

func mustBeKnownCachePolicy(name string) bool {
	_, ok := cachepolicy.ByName(name)

	return ok
}
