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

// Package csrf implements the double submit cookie protection of state changing api calls.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"slices"

	"github.com/goccy/go-json"

	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cachepolicy"
	"github.com/storeforge/adminbff/internal/config"
	"github.com/storeforge/adminbff/internal/handler/middleware/http/errorhandler"
	"github.com/storeforge/adminbff/internal/x/errorchain"
)

const tokenLength = 32

type tokenResponse struct {
	Success bool      `json:"success"`
	Data    tokenData `json:"data"`
}

type tokenData struct {
	Token      string `json:"csrfToken"`
	HeaderName string `json:"headerName"`
}

// New rejects state changing requests which do not echo the value of the token cookie in the
// token header. Requests authenticated by an Authorization header without any cookies are not
// subject to CSRF and pass. So do requests to one of the exempted paths, which have to enforce
// their methods on their own.
func New(
	conf config.CSRFConfig,
	eh errorhandler.ErrorHandler,
	exemptedPaths ...string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !conf.Enabled {
			return next
		}

		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			if isSafe(req.Method) || exempt(req) || slices.Contains(exemptedPaths, req.URL.Path) {
				next.ServeHTTP(rw, req)

				return
			}

			cookie, err := req.Cookie(conf.CookieName)
			if err != nil || len(cookie.Value) == 0 {
				eh.HandleError(rw, req, errorchain.NewWithMessage(bff.ErrCSRF, "no csrf cookie present"))

				return
			}

			header := req.Header.Get(conf.HeaderName)
			if len(header) == 0 || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				eh.HandleError(rw, req, errorchain.NewWithMessage(bff.ErrCSRF, "csrf token mismatch"))

				return
			}

			next.ServeHTTP(rw, req)
		})
	}
}

// TokenHandler issues a csrf token. A token the client already holds is reused.
func TokenHandler(conf config.CSRFConfig, eh errorhandler.ErrorHandler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		var token string

		if cookie, err := req.Cookie(conf.CookieName); err == nil && isWellFormed(cookie.Value) {
			token = cookie.Value
		} else {
			token, err = newToken()
			if err != nil {
				eh.HandleError(rw, req, errorchain.NewWithMessage(bff.ErrInternal,
					"failed generating csrf token").CausedBy(err))

				return
			}
		}

		body, err := json.Marshal(tokenResponse{
			Success: true,
			Data:    tokenData{Token: token, HeaderName: conf.HeaderName},
		})
		if err != nil {
			eh.HandleError(rw, req, errorchain.NewWithMessage(bff.ErrInternal,
				"failed rendering csrf token").CausedBy(err))

			return
		}

		// the cookie must be readable by the admin ui
		http.SetCookie(rw, &http.Cookie{ //nolint:gosec
			Name:     conf.CookieName,
			Value:    token,
			Path:     "/",
			Secure:   conf.Secure,
			SameSite: http.SameSiteStrictMode,
		})

		rw.Header().Set("Content-Type", "application/json")
		rw.Header().Set("Cache-Control", cachepolicy.NoCache.CacheControl)
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write(body)
	})
}

func newToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isWellFormed(token string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)

	return err == nil && len(raw) == tokenLength
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func exempt(req *http.Request) bool {
	return len(req.Header.Get("Authorization")) != 0 && len(req.Cookies()) == 0
}
