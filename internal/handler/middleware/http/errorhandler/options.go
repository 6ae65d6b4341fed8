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
	"net/http"
)

type opts struct {
	verboseErrors           bool
	onArgumentError         func(rw http.ResponseWriter, req *http.Request, err error)
	onCSRFError             func(rw http.ResponseWriter, req *http.Request, err error)
	onCommunicationError    func(rw http.ResponseWriter, req *http.Request, err error)
	onTimeoutError          func(rw http.ResponseWriter, req *http.Request, err error)
	onNoRouteError          func(rw http.ResponseWriter, req *http.Request, err error)
	onMethodNotAllowedError func(rw http.ResponseWriter, req *http.Request, err error)
	onInternalError         func(rw http.ResponseWriter, req *http.Request, err error)
}

type Option func(*opts)

// WithVerboseErrors adds the error messages to the details of the rendered envelope.
func WithVerboseErrors(flag bool) Option {
	return func(o *opts) {
		o.verboseErrors = flag
	}
}

func WithCommunicationErrorCode(code int) Option {
	return func(o *opts) {
		if code != 0 {
			o.onCommunicationError = o.withStatus(o.onCommunicationError, code)
		}
	}
}

func WithTimeoutErrorCode(code int) Option {
	return func(o *opts) {
		if code != 0 {
			o.onTimeoutError = o.withStatus(o.onTimeoutError, code)
		}
	}
}

func (o *opts) withStatus(
	writer func(rw http.ResponseWriter, req *http.Request, err error), code int,
) func(rw http.ResponseWriter, req *http.Request, err error) {
	return func(rw http.ResponseWriter, req *http.Request, err error) {
		writer(&statusOverride{ResponseWriter: rw, code: code}, req, err)
	}
}

type statusOverride struct {
	http.ResponseWriter

	code int
}

func (s *statusOverride) WriteHeader(int) { s.ResponseWriter.WriteHeader(s.code) }
