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

package loggeradapter

import (
	stdlog "log"

	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/x/stringx"
)

type adapter struct {
	log zerolog.Logger
}

// NewStdLogger bridges the error log of net/http servers into zerolog.
func NewStdLogger(logger zerolog.Logger) *stdlog.Logger {
	return stdlog.New(adapter{logger}, "", 0)
}

func (a adapter) Write(p []byte) (int, error) {
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[0 : n-1]
	}

	a.log.Error().Msg(stringx.ToString(p))

	return n, nil
}
