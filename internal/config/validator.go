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
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/x/errorchain"
	"github.com/storeforge/adminbff/internal/x/stringx"
	"github.com/storeforge/adminbff/schema"
)

// ValidateConfigSchema validates the given configuration file against the embedded
// JSON schema. Environment variable references are expected to be already substituted or to be
// used only for string values.
func ValidateConfigSchema(configPath string) error {
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return errorchain.NewWithMessagef(bff.ErrConfiguration,
			"failed to read config from %s", configPath).CausedBy(err)
	}

	return validateConfig(raw)
}

func validateConfig(raw []byte) error {
	var conf any

	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return errorchain.NewWithMessage(bff.ErrConfiguration,
			"failed to parse config").CausedBy(err)
	}

	if conf == nil {
		conf = map[string]any{}
	}

	compiledSchema, err := compileSchema("config.schema.json", stringx.ToString(schema.ConfigSchema))
	if err != nil {
		return errorchain.NewWithMessage(bff.ErrConfiguration,
			"failed to compile JSON schema").CausedBy(err)
	}

	if err = compiledSchema.Validate(conf); err != nil {
		return errorchain.NewWithMessage(bff.ErrConfiguration,
			"configuration does not match the schema").CausedBy(err)
	}

	return nil
}

func compileSchema(url, schemaContent string) (*jsonschema.Schema, error) {
	configSchema, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaContent))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, configSchema); err != nil {
		return nil, err
	}

	return compiler.Compile(url)
}
