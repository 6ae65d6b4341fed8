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

// Package backend performs the calls to the downstream services.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cache"
	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/headers"
	"github.com/storeforge/adminbff/internal/httpcache"
	"github.com/storeforge/adminbff/internal/x/errorchain"
)

type Request struct {
	BaseURL string
	Path    string
	Method  string
	Body    io.Reader
	Params  url.Values
	// Headers are applied on top of the composed ones.
	Headers http.Header
	// Timeout overrides the configured default if set.
	Timeout time.Duration
	// Incoming is the request the call is made on behalf of. Can be nil.
	Incoming *http.Request
}

type Client struct {
	client   *http.Client
	composer *headers.Composer
	timeout  time.Duration
}

func NewClient(conf config.BackendConfig, composer *headers.Composer, cch cache.Cache) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.MaxConnsPerHost = conf.ConnectionsLimit.MaxPerHost
	transport.MaxIdleConns = conf.ConnectionsLimit.MaxIdle
	transport.MaxIdleConnsPerHost = conf.ConnectionsLimit.MaxIdlePerHost

	var rt http.RoundTripper = otelhttp.NewTransport(transport,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return fmt.Sprintf("%s %s @%s", r.Method, r.URL.Path, r.URL.Host)
		}))

	if conf.EnableHTTPCache && cch != nil {
		rt = &httpcache.RoundTripper{Transport: rt, Cache: cch}
	}

	return &Client{
		client: &http.Client{
			Transport: rt,
			// redirects are passed through to the caller
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error { return http.ErrUseLastResponse },
		},
		composer: composer,
		timeout:  conf.Timeout,
	}
}

// Do sends the request to the downstream service. The caller owns the body of the returned
// response and must close it. Timeouts are reported as bff.ErrCommunicationTimeout, all other
// transport failures as bff.ErrCommunication.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	target, err := targetURL(r.BaseURL, r.Path, r.Params)
	if err != nil {
		return nil, errorchain.NewWithMessagef(bff.ErrArgument,
			"invalid downstream url %s", r.BaseURL).CausedBy(err)
	}

	method := r.Method
	if len(method) == 0 {
		method = http.MethodGet
	}

	timeout := c.timeout
	if r.Timeout > 0 {
		timeout = r.Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(ctx, method, target, r.Body)
	if err != nil {
		cancel()

		return nil, errorchain.NewWithMessage(bff.ErrInternal,
			"failed creating downstream request").CausedBy(err)
	}

	req.Header = c.composer.Compose(ctx, r.Incoming, r.Headers)

	zerolog.Ctx(ctx).Debug().
		Str("_method", method).
		Str("_url", target).
		Dur("_timeout", timeout).
		Msg("Calling downstream service")

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()

		if IsTimeout(err) {
			return nil, errorchain.NewWithMessagef(bff.ErrCommunicationTimeout,
				"no response from %s within %s", req.URL.Host, timeout).CausedBy(err)
		}

		return nil, errorchain.NewWithMessagef(bff.ErrCommunication,
			"failed calling %s", req.URL.Host).CausedBy(err)
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}

	return resp, nil
}

// IsTimeout reports whether err was caused by an exceeded deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// targetURL joins base and path with exactly one slash and adds the given params to the query
// the path might already carry.
func targetURL(base, path string, params url.Values) (string, error) {
	joined := strings.TrimRight(base, "/")
	if len(path) != 0 {
		joined += "/" + strings.TrimLeft(path, "/")
	}

	target, err := url.Parse(joined)
	if err != nil {
		return "", err
	}

	if len(target.Scheme) == 0 || len(target.Host) == 0 {
		return "", errors.New("absolute url expected")
	}

	if len(params) != 0 {
		query := target.Query()

		for name, values := range params {
			for _, value := range values {
				query.Add(name, value)
			}
		}

		target.RawQuery = query.Encode()
	}

	return target.String(), nil
}

type cancelOnClose struct {
	io.ReadCloser

	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()

	return err
}
