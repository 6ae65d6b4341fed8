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

// Package envelope implements the response envelope shared by all /api routes and the mapping of
// failures onto envelope error codes.
package envelope

import (
	"net/http"
	"slices"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/storeforge/adminbff/internal/x/stringx"
)

const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeTimeout             = "TIMEOUT"
	CodeValidationError     = "VALIDATION_ERROR"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	CodeGatewayTimeout      = "GATEWAY_TIMEOUT"
	CodeUnknownError        = "UNKNOWN_ERROR"
	CodeNetworkError        = "NETWORK_ERROR"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeCSRFTokenInvalid    = "CSRF_TOKEN_INVALID"
)

// MaxRawMessageLength is the number of characters of a non JSON downstream body taken over into
// the error message.
const MaxRawMessageLength = 200

//nolint:gochecknoglobals
var (
	statusCodes = map[int]string{
		http.StatusBadRequest:          CodeBadRequest,
		http.StatusUnauthorized:        CodeUnauthorized,
		http.StatusForbidden:           CodeForbidden,
		http.StatusNotFound:            CodeNotFound,
		http.StatusRequestTimeout:      CodeTimeout,
		http.StatusUnprocessableEntity: CodeValidationError,
		http.StatusInternalServerError: CodeInternalServerError,
		http.StatusServiceUnavailable:  CodeServiceUnavailable,
		http.StatusGatewayTimeout:      CodeGatewayTimeout,
	}

	retryableCodes = []string{CodeNetworkError, CodeTimeout, CodeServiceUnavailable, CodeGatewayTimeout}

	retryableStatuses = []int{
		http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

type Response struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Error      *Error          `json:"error,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// CodeForStatus maps a http status code onto an error code.
func CodeForStatus(status int) string {
	if code, ok := statusCodes[status]; ok {
		return code
	}

	return CodeUnknownError
}

// IsRetryable tells whether a failed call described by the given code and http status code is
// worth another attempt.
func IsRetryable(code string, status int) bool {
	return slices.Contains(retryableCodes, code) || slices.Contains(retryableStatuses, status)
}

func Failure(code, message string, details any) Response {
	return Response{Error: &Error{Code: code, Message: message, Details: details}}
}

// IsEnvelope tells whether the given JSON document already is an envelope.
func IsEnvelope(body []byte) bool {
	res := gjson.GetBytes(body, "success")

	return res.Type == gjson.True || res.Type == gjson.False
}

// Wrap puts a successful downstream JSON body into an envelope. An object carrying "data" and
// "pagination" keeps both. Bodies which already are envelopes are returned as they are.
func Wrap(body []byte) ([]byte, error) {
	if IsEnvelope(body) {
		return body, nil
	}

	resp := Response{Success: true, Data: body}

	data := gjson.GetBytes(body, "data")
	pagination := gjson.GetBytes(body, "pagination")

	if data.Exists() && pagination.IsObject() {
		var pg Pagination

		if err := json.Unmarshal([]byte(pagination.Raw), &pg); err == nil {
			resp.Data = json.RawMessage(data.Raw)
			resp.Pagination = &pg
		}
	}

	return json.Marshal(resp)
}

// FromDownstreamError normalizes the JSON error body of a downstream service. A code given by
// the downstream service in error.code wins over the one derived from the status code.
func FromDownstreamError(status int, body []byte) Response {
	code := CodeForStatus(status)
	if res := gjson.GetBytes(body, "error.code"); res.Type == gjson.String && len(res.Str) != 0 {
		code = res.Str
	}

	message := http.StatusText(status)

	for _, path := range []string{"error.message", "message", "error"} {
		if res := gjson.GetBytes(body, path); res.Type == gjson.String && len(res.Str) != 0 {
			message = res.Str

			break
		}
	}

	var details any

	for _, path := range []string{"error.details", "details", "errors"} {
		if res := gjson.GetBytes(body, path); res.Exists() && res.Type != gjson.Null {
			details = res.Value()

			break
		}
	}

	return Failure(code, message, details)
}

// FromRawBody builds the error for a downstream response which is not JSON or cannot be parsed.
func FromRawBody(status int, contentType string, body []byte) Response {
	message := stringx.Truncate(string(body), MaxRawMessageLength)
	if len(message) == 0 {
		message = "empty response from upstream service"
	}

	return Failure(CodeUpstreamError, message, map[string]any{
		"status":      status,
		"contentType": contentType,
	})
}
