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
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/storeforge/adminbff/internal/envelope"
)

const (
	StageAuth        = "auth"
	StageCSRF        = "csrf"
	StageRequestLog  = "request-log"
	StageResponseLog = "response-log"

	DefaultCSRFHeader = "X-CSRF-Token"
	DefaultCSRFCookie = "csrf_token"

	csrfTokenPath = "/api/csrf-token"
)

// AuthStage sets the credentials and the tenant context of the session carried by the context.
func AuthStage() Stage {
	return Stage{
		Name: StageAuth,
		OnRequest: func(ctx context.Context, req *http.Request) error {
			session, ok := SessionFrom(ctx)
			if !ok {
				return nil
			}

			if len(session.Token) != 0 {
				req.Header.Set("Authorization", "Bearer "+session.Token)
			}

			setIfPresent(req.Header, "X-Tenant-ID", session.TenantID)
			setIfPresent(req.Header, "X-Vendor-ID", session.VendorID)
			setIfPresent(req.Header, "X-User-ID", session.UserID)

			return nil
		},
	}
}

// CSRFStage attaches the csrf token to state changing requests. The token is taken from the
// cookie jar of the client or fetched from the BFF if there is none yet. The token cookie is
// added by the stage whenever the jar does not provide it.
func CSRFStage(source *TokenSource) Stage {
	return Stage{
		Name: StageCSRF,
		OnRequest: func(ctx context.Context, req *http.Request) error {
			switch req.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				return nil
			}

			token, err := source.Token(ctx)
			if err != nil {
				return err
			}

			req.Header.Set(source.header, token)

			if len(source.fromJar(req.URL)) == 0 {
				req.AddCookie(&http.Cookie{Name: source.cookie, Value: token})
			}

			return nil
		},
	}
}

func RequestLogStage(logger zerolog.Logger) Stage {
	return Stage{
		Name: StageRequestLog,
		OnRequest: func(_ context.Context, req *http.Request) error {
			logger.Debug().
				Str("_method", req.Method).
				Str("_url", req.URL.String()).
				Msg("API request")

			return nil
		},
	}
}

func ResponseLogStage(logger zerolog.Logger) Stage {
	return Stage{
		Name: StageResponseLog,
		OnResponse: func(_ context.Context, req *http.Request, resp *http.Response) {
			logger.Debug().
				Str("_method", req.Method).
				Str("_url", req.URL.String()).
				Int("_http_status_code", resp.StatusCode).
				Msg("API response")
		},
		OnError: func(_ context.Context, req *http.Request, err *Error) {
			logger.Warn().
				Str("_method", req.Method).
				Str("_url", req.URL.String()).
				Str("_code", err.Code).
				Int("_http_status_code", err.Status).
				Msg(err.Message)
		},
	}
}

// TokenSource provides the csrf token of a BFF.
type TokenSource struct {
	client   *http.Client
	endpoint *url.URL
	header   string
	cookie   string

	mu    sync.Mutex
	token string
}

func NewTokenSource(client *http.Client, baseURL *url.URL, header, cookie string) *TokenSource {
	base := *baseURL
	if len(base.Path) == 0 {
		// JoinPath yields a relative path otherwise, which no cookie path matches
		base.Path = "/"
	}

	return &TokenSource{
		client:   client,
		endpoint: base.JoinPath(csrfTokenPath),
		header:   header,
		cookie:   cookie,
	}
}

func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token := s.fromJar(s.endpoint); len(token) != 0 {
		return token, nil
	}

	if len(s.token) != 0 {
		return s.token, nil
	}

	token, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	s.token = token

	return token, nil
}

// fromJar returns the token cookie the jar of the client holds for u, if any.
func (s *TokenSource) fromJar(u *url.URL) string {
	if s.client.Jar == nil {
		return ""
	}

	for _, cookie := range s.client.Jar.Cookies(u) {
		if cookie.Name == s.cookie && len(cookie.Value) != 0 {
			return cookie.Value
		}
	}

	return ""
}

func (s *TokenSource) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint.String(), nil)
	if err != nil {
		return "", &Error{Code: envelope.CodeBadRequest, Message: "invalid csrf token endpoint", cause: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &Error{Code: envelope.CodeNetworkError, Message: "failed fetching csrf token", cause: err}
	}

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Code: envelope.CodeNetworkError, Message: "failed reading csrf token", cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Code:    envelope.CodeForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: "failed fetching csrf token",
		}
	}

	token := gjson.GetBytes(raw, "data.csrfToken").String()
	if len(token) == 0 {
		return "", &Error{
			Code:    envelope.CodeCSRFTokenInvalid,
			Status:  resp.StatusCode,
			Message: "csrf token endpoint responded without a token",
		}
	}

	return token, nil
}

func setIfPresent(header http.Header, name, value string) {
	if len(value) != 0 {
		header.Set(name, value)
	}
}
