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

package serve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/storeforge/adminbff/cmd/flags"
	"github.com/storeforge/adminbff/internal/bff"
)

func TestCreateApp(t *testing.T) {
	for uc, tc := range map[string]struct {
		config string
		assert func(t *testing.T, err error, app *fx.App)
	}{
		"default configuration": {
			assert: func(t *testing.T, err error, app *fx.App) {
				t.Helper()

				require.NoError(t, err)
				require.NotNil(t, app)
			},
		},
		"configuration with routes": {
			config: `
log:
  level: debug
routes:
  catalog:
    url: http://catalog.local:8080
    prefix: /v1
    cache_policy: private
`,
			assert: func(t *testing.T, err error, app *fx.App) {
				t.Helper()

				require.NoError(t, err)
				require.NotNil(t, app)
			},
		},
		"route with unknown cache policy": {
			config: `
routes:
  catalog:
    url: http://catalog.local:8080
    cache_policy: forever
`,
			assert: func(t *testing.T, err error, _ *fx.App) {
				t.Helper()

				require.Error(t, err)
				require.ErrorIs(t, err, bff.ErrConfiguration)
			},
		},
	} {
		t.Run(uc, func(t *testing.T) {
			// GIVEN
			cmd := &cobra.Command{Use: "serve"}
			flags.RegisterGlobalFlags(cmd)

			args := []string{"--" + flags.EnvironmentConfigPrefix, "ADMINBFF_TEST_"}

			if len(tc.config) != 0 {
				path := filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tc.config), 0o600))

				args = append(args, "--"+flags.Config, path)
			}

			require.NoError(t, cmd.ParseFlags(args))

			// WHEN
			app, err := createApp(cmd, fx.Options())

			// THEN
			tc.assert(t, err, app)
		})
	}
}

func TestNewCommand(t *testing.T) {
	t.Parallel()

	cmd := NewCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotNil(t, cmd.RunE)
}
