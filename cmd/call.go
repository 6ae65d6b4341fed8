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
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/storeforge/adminbff/cmd/flags"
	"github.com/storeforge/adminbff/internal/apiclient"
	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/envelope"
	"github.com/storeforge/adminbff/internal/logging"
	"github.com/storeforge/adminbff/internal/x/stringx"
)

var (
	errInvalidQueryParameter = errors.New("invalid query parameter")
	errInvalidRequestBody    = errors.New("request body is not a valid json document")
)

// nolint: gochecknoinits
func init() {
	RootCmd.AddCommand(newCallCmd())
}

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call METHOD PATH",
		Short: "Calls an /api route of a running admin BFF the way the admin ui does",
		Example: `adminbff call GET /api/catalog/products -q page=2 --token $TOKEN --tenant acme
adminbff call POST /api/catalog/products -d '{"name":"shoe"}' --token $TOKEN`,
		Args: cobra.ExactArgs(2), //nolint:mnd
		Run: func(cmd *cobra.Command, args []string) {
			if err := callAPI(cmd, args[0], args[1]); err != nil {
				cmd.PrintErrln(err)
				os.Exit(1)
			}
		},
	}

	flags.RegisterGlobalFlags(cmd)
	registerOutputFlag(cmd)

	cmd.Flags().String("base-url", "", "Base URL of the admin BFF. Overrides client.base_url of the configuration.")
	cmd.Flags().String("token", "", "Bearer token to authenticate the call with.")
	cmd.Flags().String("tenant", "", "Tenant the call is made for.")
	cmd.Flags().String("vendor", "", "Vendor the call is made for.")
	cmd.Flags().String("user", "", "User the call is made on behalf of.")
	cmd.Flags().StringP("data", "d", "", "JSON document to send as request body.")
	cmd.Flags().StringArrayP("query", "q", nil, "Query parameter in the form name=value. Can be repeated.")

	return cmd
}

func callAPI(cmd *cobra.Command, method, path string) error {
	conf, err := loadClientConfig(cmd)
	if err != nil {
		return err
	}

	params, err := queryParameters(cmd)
	if err != nil {
		return err
	}

	var body any

	if data, _ := cmd.Flags().GetString("data"); len(data) != 0 {
		if !json.Valid(stringx.ToBytes(data)) {
			return errInvalidRequestBody
		}

		body = json.RawMessage(data)
	}

	logger := zerolog.Nop()
	if conf.Client.Development {
		logger = logging.NewLogger(conf.Log)
	}

	client, err := apiclient.New(conf.Client, apiclient.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx := apiclient.WithSession(callContext(cmd), sessionFromFlags(cmd))

	resp, err := client.Do(ctx, strings.ToUpper(method), path, params, body)
	if err != nil {
		var apiErr *apiclient.Error
		if !errors.As(err, &apiErr) {
			return err
		}

		resp = &envelope.Response{
			Error: &envelope.Error{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details},
		}
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	if err = printResult(cmd, raw, func(doc map[string]any) string {
		if resp.Success {
			return stringx.ToString(resp.Data)
		}

		return fmt.Sprint(doc["error"])
	}); err != nil {
		return err
	}

	if !resp.Success {
		return fmt.Errorf("call failed: %s", resp.Error.Code) //nolint:err113
	}

	return nil
}

func loadClientConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString(flags.Config)
	envPrefix, _ := cmd.Flags().GetString(flags.EnvironmentConfigPrefix)

	validator, err := config.NewValidator()
	if err != nil {
		return nil, err
	}

	conf, err := config.NewConfiguration(
		config.EnvVarPrefix(envPrefix),
		config.ConfigurationPath(configPath),
		validator,
	)
	if err != nil {
		return nil, err
	}

	if baseURL, _ := cmd.Flags().GetString("base-url"); len(baseURL) != 0 {
		conf.Client.BaseURL = baseURL
	}

	return conf, nil
}

func queryParameters(cmd *cobra.Command) (url.Values, error) {
	query, _ := cmd.Flags().GetStringArray("query")
	params := url.Values{}

	for _, param := range query {
		name, value, found := strings.Cut(param, "=")
		if !found || len(name) == 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidQueryParameter, param)
		}

		params.Add(name, value)
	}

	return params, nil
}

func sessionFromFlags(cmd *cobra.Command) apiclient.Session {
	token, _ := cmd.Flags().GetString("token")
	tenant, _ := cmd.Flags().GetString("tenant")
	vendor, _ := cmd.Flags().GetString("vendor")
	user, _ := cmd.Flags().GetString("user")

	return apiclient.Session{Token: token, TenantID: tenant, VendorID: vendor, UserID: user}
}

func callContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
