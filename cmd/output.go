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

package cmd

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/storeforge/adminbff/internal/x/stringx"
)

var errUnsupportedOutputFormat = errors.New("unsupported output format")

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func registerOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("output", "o", outputText, `The format for the result output.
Can be "json", "text", or "yaml".`)
}

// printResult renders the raw json document in the format requested by the "output" flag. The
// text format prints whatever text returns for the decoded document.
func printResult(cmd *cobra.Command, raw []byte, text func(doc map[string]any) string) error {
	format, _ := cmd.Flags().GetString("output")

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	switch format {
	case outputJSON:
		cmd.Println(stringx.ToString(raw))
	case outputYAML:
		rawYaml, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to convert response to yaml: %w", err)
		}

		cmd.Print(stringx.ToString(rawYaml))
	case outputText:
		cmd.Println(text(doc))
	default:
		return fmt.Errorf("%w: %s", errUnsupportedOutputFormat, format)
	}

	return nil
}
