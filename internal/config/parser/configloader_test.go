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

package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeforge/adminbff/internal/bff"
)

type testNestedConfig struct {
	SomeString string        `koanf:"some_string"`
	SomeInt    int           `koanf:"someint"`
	SomeBool   bool          `koanf:"somebool"`
	Timeout    time.Duration `koanf:"timeout"`
}

type testConfig struct {
	SomeString string                      `koanf:"some_string"`
	SomeInt    int                         `koanf:"someint"`
	SomeBool   bool                        `koanf:"some_bool"`
	SomeSlice  []string                    `koanf:"some_slice"`
	Nested1    testNestedConfig            `koanf:"nested1"`
	Nested2    map[string]testNestedConfig `koanf:"nested_2"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	fileName := filepath.Join(t.TempDir(), "config.yaml")

	err := os.WriteFile(fileName, []byte(content), 0o600)
	require.NoError(t, err)

	return fileName
}

func TestConfigLoaderLoad(t *testing.T) {
	// GIVEN
	config := testConfig{
		SomeString: "default value",
		SomeInt:    666,
		Nested1:    testNestedConfig{Timeout: 10 * time.Second},
	}

	t.Setenv("BAR_VALUE", "from env substitution")

	fileName := writeConfig(t, `
some_string: "overridden by yaml file"
someint: 10
nested1:
  somebool: true
  some_string: ${BAR_VALUE}
nested_2:
  products:
    some_string: "from yaml"
`)

	t.Setenv("CONFIGLOADERTEST_SOME__BOOL", "true")
	t.Setenv("CONFIGLOADERTEST_SOMEINT", "42")
	t.Setenv("CONFIGLOADERTEST_SOME__SLICE", "foo,bar")
	t.Setenv("CONFIGLOADERTEST_NESTED1_TIMEOUT", "3s")
	t.Setenv("CONFIGLOADERTEST_NESTED__2_PRODUCTS_SOMEINT", "222")

	// WHEN
	err := New(
		WithConfigFile(fileName),
		WithEnvPrefix("CONFIGLOADERTEST_"),
	).Load(&config)

	// THEN
	require.NoError(t, err)

	assert.Equal(t, "overridden by yaml file", config.SomeString)
	assert.Equal(t, 42, config.SomeInt)
	assert.True(t, config.SomeBool)
	assert.Equal(t, []string{"foo", "bar"}, config.SomeSlice)
	assert.Equal(t, "from env substitution", config.Nested1.SomeString)
	assert.True(t, config.Nested1.SomeBool)
	assert.Equal(t, 3*time.Second, config.Nested1.Timeout)
	require.Contains(t, config.Nested2, "products")
	assert.Equal(t, "from yaml", config.Nested2["products"].SomeString)
	assert.Equal(t, 222, config.Nested2["products"].SomeInt)
}

func TestConfigLoaderLoadWithDefaultConfigFile(t *testing.T) {
	// GIVEN
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "adminbff.yaml"), []byte("someint: 7"), 0o600)
	require.NoError(t, err)

	var config testConfig

	// WHEN
	err = New(
		WithDefaultConfigFilename("adminbff.yaml"),
		WithConfigLookupDir("/does/not/exist"),
		WithConfigLookupDir(dir),
	).Load(&config)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 7, config.SomeInt)
}

func TestConfigLoaderLoadFailures(t *testing.T) {
	for uc, tc := range map[string]struct {
		opts   func(t *testing.T) []Option
		assert func(t *testing.T, err error)
	}{
		"configured file does not exist": {
			opts: func(t *testing.T) []Option {
				t.Helper()

				return []Option{WithConfigFile("/does/not/exist.yaml")}
			},
			assert: func(t *testing.T, err error) {
				t.Helper()

				require.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		"invalid yaml": {
			opts: func(t *testing.T) []Option {
				t.Helper()

				return []Option{WithConfigFile(writeConfig(t, "foo: [bar"))}
			},
			assert: func(t *testing.T, err error) {
				t.Helper()

				require.ErrorIs(t, err, bff.ErrConfiguration)
				require.ErrorContains(t, err, "failed to load yaml config")
			},
		},
		"validator rejects file": {
			opts: func(t *testing.T) []Option {
				t.Helper()

				return []Option{
					WithConfigFile(writeConfig(t, "someint: 1")),
					WithConfigValidator(func(string) error { return bff.ErrConfiguration }),
				}
			},
			assert: func(t *testing.T, err error) {
				t.Helper()

				require.ErrorIs(t, err, bff.ErrConfiguration)
			},
		},
	} {
		t.Run(uc, func(t *testing.T) {
			var config testConfig

			// WHEN
			err := New(tc.opts(t)...).Load(&config)

			// THEN
			tc.assert(t, err)
		})
	}
}
