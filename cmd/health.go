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

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storeforge/adminbff/internal/handler/management"
)

// nolint: gochecknoglobals
var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Checks the health status of an admin BFF deployment",
	Example: "adminbff health -e http://127.0.0.1:3001",
	Run: func(cmd *cobra.Command, _ []string) {
		if err := checkHealth(cmd); err != nil {
			cmd.PrintErrln(err)
			os.Exit(-1)
		}
	},
}

// nolint: gochecknoinits
func init() {
	RootCmd.AddCommand(healthCmd)

	healthCmd.PersistentFlags().StringP("endpoint", "e", "http://127.0.0.1:3001",
		`The base URL of the management service of the deployment.
Note: The endpoint URL should point to a single deployment.
If the endpoint URL points to a Load Balancer, this command will effectively test the Load Balancer.`)
	registerOutputFlag(healthCmd)
}

func checkHealth(cmd *cobra.Command) error {
	endpointURL, _ := cmd.Flags().GetString("endpoint")

	req, err := http.NewRequestWithContext(callContext(cmd), http.MethodGet,
		strings.TrimSuffix(endpointURL, "/")+management.EndpointHealth, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status code: %s", resp.Status) //nolint:err113
	}

	rawResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	return printResult(cmd, rawResp, func(doc map[string]any) string {
		return fmt.Sprint(doc["status"])
	})
}
