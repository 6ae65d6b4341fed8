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

package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/envelope"
	"github.com/storeforge/adminbff/internal/x"
	"github.com/storeforge/adminbff/internal/x/pointer"
)

const maxResponseBodySize = 32 << 20

// Client calls the /api routes of the BFF the way the admin ui does. Failed calls are retried
// with a fixed delay if the failure is transient.
type Client struct {
	conf        config.ClientConfig
	baseURL     *url.URL
	client      *http.Client
	logger      zerolog.Logger
	pipeline    Pipeline
	extraStages []Stage
}

func New(conf config.ClientConfig, opts ...Option) (*Client, error) {
	baseURL, err := url.Parse(conf.BaseURL)
	if err != nil || !baseURL.IsAbs() {
		return nil, &Error{
			Code:    envelope.CodeBadRequest,
			Message: fmt.Sprintf("invalid base url %q", conf.BaseURL),
			cause:   err,
		}
	}

	jar, _ := cookiejar.New(nil)

	c := &Client{
		conf:    conf,
		baseURL: baseURL,
		client:  &http.Client{Jar: jar},
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	source := NewTokenSource(c.client, baseURL,
		x.FirstNonEmpty(conf.CSRFHeader, DefaultCSRFHeader),
		x.FirstNonEmpty(conf.CSRFCookie, DefaultCSRFCookie),
	)

	stages := []Stage{AuthStage(), CSRFStage(source)}
	if conf.Development {
		stages = append(stages, RequestLogStage(c.logger), ResponseLogStage(c.logger))
	}

	c.pipeline = NewPipeline(stages...).With(c.extraStages...)
	c.extraStages = nil

	return c, nil
}

func (c *Client) Pipeline() Pipeline { return c.pipeline }

func (c *Client) Get(ctx context.Context, path string, params url.Values) (*envelope.Response, error) {
	return c.Do(ctx, http.MethodGet, path, params, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*envelope.Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*envelope.Response, error) {
	return c.Do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*envelope.Response, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*envelope.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do performs the call and returns the decoded envelope of a successful response. All failures
// are reported as *Error.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	params url.Values,
	body any,
) (*envelope.Response, error) {
	var payload []byte

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Code: envelope.CodeBadRequest, Message: "failed encoding request body", cause: err}
		}

		payload = raw
	}

	target := c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
	if len(params) != 0 {
		target.RawQuery = params.Encode()
	}

	attempt := 0

	resp, err := backoff.Retry(ctx,
		func() (*envelope.Response, error) {
			attempt++

			resp, err := c.attempt(ctx, method, target.String(), payload)
			if err == nil {
				return resp, nil
			}

			if err.Retryable() {
				return nil, err
			}

			return nil, backoff.Permanent(err)
		},
		backoff.WithBackOff(backoff.NewConstantBackOff(c.conf.RetryDelay)),
		backoff.WithMaxTries(uint(max(c.conf.RetryAttempts, 0))+1), //nolint:gosec
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			c.logger.Debug().
				Err(err).
				Int("_attempt", attempt).
				Dur("_delay", delay).
				Str("_url", target.String()).
				Msg("Retrying API call")
		}),
	)
	if err != nil {
		var apiErr *Error
		if !errors.As(err, &apiErr) {
			// the context of the call has been canceled while waiting for the next attempt
			apiErr = &Error{Code: envelope.CodeNetworkError, Message: "request canceled", cause: err}
		}

		return nil, apiErr
	}

	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, target string, payload []byte) (*envelope.Response, *Error) {
	attemptCtx := ctx
	if c.conf.Timeout > 0 {
		var cancel context.CancelFunc

		attemptCtx, cancel = context.WithTimeout(ctx, c.conf.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, target, body)
	if err != nil {
		return nil, &Error{Code: envelope.CodeBadRequest, Message: "failed creating request", cause: err}
	}

	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err = c.pipeline.onRequest(attemptCtx, req); err != nil {
		return nil, c.failed(attemptCtx, req, c.classify(ctx, attemptCtx, err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.failed(attemptCtx, req, c.classify(ctx, attemptCtx, err))
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, c.failed(attemptCtx, req, c.classify(ctx, attemptCtx, err))
	}

	c.pipeline.onResponse(attemptCtx, req, resp)

	result, apiErr := decode(resp, raw)
	if apiErr != nil {
		return nil, c.failed(attemptCtx, req, apiErr)
	}

	return result, nil
}

func (c *Client) failed(ctx context.Context, req *http.Request, err *Error) *Error {
	c.pipeline.onError(ctx, req, err)

	return err
}

func (c *Client) classify(callCtx, attemptCtx context.Context, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if callCtx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return &Error{
			Code:    envelope.CodeTimeout,
			Status:  http.StatusRequestTimeout,
			Message: fmt.Sprintf("request timed out after %s", c.conf.Timeout),
			cause:   err,
		}
	}

	if callCtx.Err() != nil {
		return &Error{Code: envelope.CodeNetworkError, Message: "request canceled", cause: err}
	}

	return &Error{Code: envelope.CodeNetworkError, Message: "service not reachable", cause: err}
}

func decode(resp *http.Response, raw []byte) (*envelope.Response, *Error) {
	success := resp.StatusCode < http.StatusBadRequest

	if len(bytes.TrimSpace(raw)) == 0 {
		if success {
			return &envelope.Response{Success: true}, nil
		}

		return nil, fromEnvelope(resp.StatusCode, pointer.To(envelope.FromDownstreamError(resp.StatusCode, nil)))
	}

	if !json.Valid(raw) {
		return nil, fromEnvelope(resp.StatusCode,
			pointer.To(envelope.FromRawBody(resp.StatusCode, resp.Header.Get("Content-Type"), raw)))
	}

	if !envelope.IsEnvelope(raw) {
		if success {
			return &envelope.Response{Success: true, Data: raw}, nil
		}

		return nil, fromEnvelope(resp.StatusCode, pointer.To(envelope.FromDownstreamError(resp.StatusCode, raw)))
	}

	var result envelope.Response
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &Error{
			Code:    envelope.CodeUpstreamError,
			Status:  resp.StatusCode,
			Message: "failed decoding response",
			cause:   err,
		}
	}

	if !success || !result.Success {
		return nil, fromEnvelope(resp.StatusCode, &result)
	}

	return &result, nil
}
