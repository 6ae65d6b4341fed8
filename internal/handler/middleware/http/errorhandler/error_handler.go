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

package errorhandler

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/accesscontext"
	"github.com/storeforge/adminbff/internal/bff"
	"github.com/storeforge/adminbff/internal/cachepolicy"
	"github.com/storeforge/adminbff/internal/envelope"
)

type ErrorHandler interface {
	HandleError(rw http.ResponseWriter, req *http.Request, err error)
}

func New(opts ...Option) ErrorHandler {
	options := defaultOptions()

	for _, opt := range opts {
		opt(options)
	}

	return &errorHandler{opts: options}
}

type errorHandler struct {
	*opts
}

// HandleError renders err as a failure envelope. The status and the code depend on the class
// of the error.
func (h *errorHandler) HandleError(rw http.ResponseWriter, req *http.Request, err error) {
	ctx := req.Context()
	logger := zerolog.Ctx(ctx)

	if route := accesscontext.Route(ctx); len(route) != 0 {
		l := logger.With().Str("_context", route).Logger()
		logger = &l
	}

	switch {
	case errors.Is(err, bff.ErrCommunicationTimeout):
		logger.Warn().Err(err).Msg("Downstream service timed out")
		h.onTimeoutError(rw, req, err)
	case errors.Is(err, bff.ErrCommunication):
		logger.Warn().Err(err).Msg("Downstream service not reachable")
		h.onCommunicationError(rw, req, err)
	case errors.Is(err, bff.ErrArgument):
		h.onArgumentError(rw, req, err)
	case errors.Is(err, bff.ErrCSRF):
		h.onCSRFError(rw, req, err)
	case errors.Is(err, bff.ErrMethodNotAllowed):
		h.onMethodNotAllowedError(rw, req, err)
	case errors.Is(err, bff.ErrNoRouteFound):
		h.onNoRouteError(rw, req, err)
	default:
		logger.Error().Err(err).Msg("Internal error occurred")
		h.onInternalError(rw, req, err)
	}

	accesscontext.SetError(ctx, err)
}

func errorWriter(o *opts, code int, errCode, message string) func(rw http.ResponseWriter, req *http.Request, err error) {
	return func(rw http.ResponseWriter, req *http.Request, err error) {
		var details any
		if o.verboseErrors {
			details = err.Error()
		}

		body, err := json.Marshal(envelope.Failure(errCode, message, details))
		if err != nil {
			zerolog.Ctx(req.Context()).Warn().Err(err).Msg("Failed rendering error response. No body is sent")
		}

		rw.Header().Set("Cache-Control", cachepolicy.NoCache.CacheControl)

		if len(body) != 0 {
			rw.Header().Set("Content-Type", "application/json")
			rw.Header().Set("X-Content-Type-Options", "nosniff")
		}

		rw.WriteHeader(code)

		if len(body) != 0 {
			_, _ = rw.Write(body)
		}
	}
}
