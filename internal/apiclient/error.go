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
	"fmt"

	"github.com/storeforge/adminbff/internal/envelope"
)

// Error is returned for every failed call. Status is 0 if no response has been received.
type Error struct {
	Code    string
	Status  int
	Message string
	Details any

	cause error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Retryable() bool { return envelope.IsRetryable(e.Code, e.Status) }

func fromEnvelope(status int, resp *envelope.Response) *Error {
	if resp.Error == nil {
		return &Error{Code: envelope.CodeForStatus(status), Status: status, Message: "request failed"}
	}

	return &Error{
		Code:    resp.Error.Code,
		Status:  status,
		Message: resp.Error.Message,
		Details: resp.Error.Details,
	}
}
