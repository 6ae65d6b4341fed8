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

	"github.com/storeforge/adminbff/internal/envelope"
)

func defaultOptions() *opts {
	defaults := &opts{}
	defaults.onArgumentError = errorWriter(defaults, http.StatusBadRequest,
		envelope.CodeBadRequest, "The request could not be processed")
	defaults.onCSRFError = errorWriter(defaults, http.StatusForbidden,
		envelope.CodeCSRFTokenInvalid, "Missing or invalid CSRF token")
	defaults.onCommunicationError = errorWriter(defaults, http.StatusServiceUnavailable,
		envelope.CodeNetworkError, "The service is currently not reachable")
	defaults.onTimeoutError = errorWriter(defaults, http.StatusGatewayTimeout,
		envelope.CodeTimeout, "The service did not respond in time")
	defaults.onNoRouteError = errorWriter(defaults, http.StatusNotFound,
		envelope.CodeNotFound, "No such route")
	defaults.onMethodNotAllowedError = errorWriter(defaults, http.StatusMethodNotAllowed,
		envelope.CodeMethodNotAllowed, "Method not allowed")
	defaults.onInternalError = errorWriter(defaults, http.StatusInternalServerError,
		envelope.CodeInternalServerError, "An internal error occurred")

	return defaults
}
