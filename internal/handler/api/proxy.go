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

// Package api serves the /api routes of the admin ui by proxying them to the downstream services.
package api

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/accesscontext"
	"github.com/storeforge/adminbff/internal/backend"
	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cachepolicy"
	"github.com/storeforge/adminbff/internal/envelope"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
	"github.com/storeforge/adminbff/internal/x/errorchain"
)

const (
	maxRequestBodySize  = 10 << 20
	maxResponseBodySize = 32 << 20

	varyHeader = "Accept-Encoding, X-Tenant-ID"
)

// downstream response headers handed over to the client.
//
//nolint:gochecknoglobals
var passedHeaders = []string{"Location", "ETag", "Last-Modified", "X-Total-Count"}

// Proxy forwards api requests to downstream services and normalizes their responses to the
// envelope format.
type Proxy struct {
	client *backend.Client
	eh     errorhandler.ErrorHandler
}

func NewProxy(client *backend.Client, eh errorhandler.ErrorHandler) *Proxy {
	return &Proxy{client: client, eh: eh}
}

// Get forwards the query of req. On success, the response carries the Cache-Control header of
// the policy selected for the path of req, or the one given by WithCachePolicy.
func (p *Proxy) Get(rw http.ResponseWriter, req *http.Request, target Target, opts ...Option) {
	o := newOptions(opts)

	policy := cachepolicy.Select(req.URL.Path, http.MethodGet)
	if o.policy != nil {
		policy = *o.policy
	}

	p.forward(rw, req, http.MethodGet, target, nil, policy, o)
}

func (p *Proxy) Post(rw http.ResponseWriter, req *http.Request, target Target, opts ...Option) {
	p.mutate(rw, req, http.MethodPost, target, opts)
}

func (p *Proxy) Put(rw http.ResponseWriter, req *http.Request, target Target, opts ...Option) {
	p.mutate(rw, req, http.MethodPut, target, opts)
}

func (p *Proxy) Patch(rw http.ResponseWriter, req *http.Request, target Target, opts ...Option) {
	p.mutate(rw, req, http.MethodPatch, target, opts)
}

func (p *Proxy) Delete(rw http.ResponseWriter, req *http.Request, target Target, opts ...Option) {
	p.mutate(rw, req, http.MethodDelete, target, opts)
}

// mutate forwards a state changing request. Its body is forwarded only if it is valid JSON.
// Responses are never cacheable.
func (p *Proxy) mutate(rw http.ResponseWriter, req *http.Request, method string, target Target, opts []Option) {
	p.forward(rw, req, method, target, requestBody(req), cachepolicy.NoCache, newOptions(opts))
}

func (p *Proxy) forward(
	rw http.ResponseWriter,
	req *http.Request,
	method string,
	target Target,
	body io.Reader,
	policy cachepolicy.Policy,
	o *options,
) {
	ctx := req.Context()
	accesscontext.SetRoute(ctx, target.Name)

	var params url.Values
	if method == http.MethodGet {
		params = req.URL.Query()
	}

	resp, err := p.client.Do(ctx, backend.Request{
		BaseURL:  target.BaseURL,
		Path:     target.Path,
		Method:   method,
		Body:     body,
		Params:   params,
		Headers:  o.headers,
		Timeout:  o.timeout,
		Incoming: req,
	})
	if err != nil {
		p.eh.HandleError(rw, req, err)

		return
	}

	defer resp.Body.Close()

	p.respond(rw, req, method, target, resp, policy)
}

func (p *Proxy) respond(
	rw http.ResponseWriter,
	req *http.Request,
	method string,
	target Target,
	resp *http.Response,
	policy cachepolicy.Policy,
) {
	logger := zerolog.Ctx(req.Context()).With().Str("_context", target.Name).Logger()

	for _, name := range passedHeaders {
		if value := resp.Header.Get(name); len(value) != 0 {
			rw.Header().Set(name, value)
		}
	}

	// no content and redirects are passed through without a body
	if resp.StatusCode == http.StatusNoContent ||
		(resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest) {
		rw.Header().Set("Cache-Control", cachepolicy.NoCache.CacheControl)
		rw.WriteHeader(resp.StatusCode)

		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		if backend.IsTimeout(err) {
			p.eh.HandleError(rw, req, errorchain.NewWithMessagef(bff.ErrCommunicationTimeout,
				"response from %s not received in time", target.Name).CausedBy(err))
		} else {
			p.eh.HandleError(rw, req, errorchain.NewWithMessagef(bff.ErrCommunication,
				"failed reading response from %s", target.Name).CausedBy(err))
		}

		return
	}

	contentType := resp.Header.Get("Content-Type")
	success := resp.StatusCode < http.StatusBadRequest
	vary := method == http.MethodGet
	empty := len(bytes.TrimSpace(body)) == 0

	switch {
	case empty && success:
		writeEnvelope(rw, resp.StatusCode, policy, vary, envelope.Response{Success: true})
	case empty:
		writeEnvelope(rw, resp.StatusCode, cachepolicy.NoCache, false,
			envelope.FromDownstreamError(resp.StatusCode, nil))
	case !isJSON(contentType) || !json.Valid(body):
		logger.Warn().
			Int("_http_status_code", resp.StatusCode).
			Str("_content_type", contentType).
			Msg("Downstream service responded with a non JSON body")

		status := resp.StatusCode
		if success {
			status = http.StatusBadGateway
		}

		writeEnvelope(rw, status, cachepolicy.NoCache, false,
			envelope.FromRawBody(resp.StatusCode, contentType, body))
	case !success:
		logger.Debug().Int("_http_status_code", resp.StatusCode).Msg("Downstream service responded with an error")

		writeEnvelope(rw, resp.StatusCode, cachepolicy.NoCache, false,
			envelope.FromDownstreamError(resp.StatusCode, body))
	default:
		wrapped, err := envelope.Wrap(body)
		if err != nil {
			p.eh.HandleError(rw, req, errorchain.NewWithMessage(bff.ErrInternal,
				"failed wrapping downstream response").CausedBy(err))

			return
		}

		writeRaw(rw, resp.StatusCode, policy, vary, wrapped)
	}
}

func writeEnvelope(rw http.ResponseWriter, status int, policy cachepolicy.Policy, vary bool, resp envelope.Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		body = []byte(`{"success":false,"error":{"code":"` + envelope.CodeInternalServerError +
			`","message":"failed rendering response"}}`)
		status = http.StatusInternalServerError
	}

	writeRaw(rw, status, policy, vary, body)
}

func writeRaw(rw http.ResponseWriter, status int, policy cachepolicy.Policy, vary bool, body []byte) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Cache-Control", policy.CacheControl)

	if vary {
		rw.Header().Set("Vary", varyHeader)
	}

	rw.WriteHeader(status)
	_, _ = rw.Write(body)
}

func requestBody(req *http.Request) io.Reader {
	if req.Body == nil {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxRequestBodySize))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 || !json.Valid(raw) {
		zerolog.Ctx(req.Context()).Debug().Msg("Request carries no valid JSON body. Forwarding without body")

		return nil
	}

	return bytes.NewReader(raw)
}

func isJSON(value string) bool {
	mt, err := contenttype.ParseMediaType(value)
	if err != nil {
		return false
	}

	return mt.Subtype == "json" || strings.HasSuffix(mt.Subtype, "+json")
}

func newOptions(opts []Option) *options {
	o := &options{}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
