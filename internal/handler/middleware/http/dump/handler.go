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

package dump

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httputil"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/rs/zerolog"

	"github.com/storeforge/adminbff/internal/x/stringx"
)

// headers carrying credentials. Their values never make it into the logs.
//
//nolint:gochecknoglobals
var redacted = []string{"Authorization", "Cookie", "Set-Cookie", "X-CSRF-Token"}

// New dumps requests and responses on trace level.
func New() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			logger := zerolog.Ctx(req.Context())

			if logger.GetLevel() != zerolog.TraceLevel {
				next.ServeHTTP(rw, req)

				return
			}

			dumpRequest(logger, req)

			var (
				wroteHeader bool
				buffer      bytes.Buffer
			)

			writeHead := func(code int) {
				if wroteHeader {
					return
				}

				writeStatusLine(&buffer, req.Proto, code)
				redact(rw.Header()).Write(&buffer) //nolint:errcheck
				buffer.WriteString("\r\n")

				wroteHeader = true
			}

			next.ServeHTTP(httpsnoop.Wrap(rw, httpsnoop.Hooks{
				WriteHeader: func(writeHeader httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						writeHead(code)
						writeHeader(code)
					}
				},
				Write: func(write httpsnoop.WriteFunc) httpsnoop.WriteFunc {
					return func(data []byte) (int, error) {
						writeHead(http.StatusOK)
						buffer.Write(data)

						return write(data)
					}
				},
			}), req)

			logger.Trace().Msgf("Response: %s\n", stringx.ToString(buffer.Bytes()))
		})
	}
}

func dumpRequest(logger *zerolog.Logger, req *http.Request) {
	contentType := req.Header.Get("Content-Type")
	withBody := req.ContentLength != 0 && !strings.Contains(contentType, "stream")

	original := req.Header
	req.Header = redact(original)

	dump, err := httputil.DumpRequest(req, withBody)

	req.Header = original

	if err != nil {
		logger.Trace().Err(err).Msg("Failed dumping request")

		return
	}

	logger.Trace().Msgf("Request: %s\n", stringx.ToString(dump))
}

func redact(header http.Header) http.Header {
	clone := header.Clone()

	for _, name := range redacted {
		if len(clone.Values(name)) != 0 {
			clone.Set(name, "[redacted]")
		}
	}

	return clone
}

func writeStatusLine(bw *bytes.Buffer, proto string, code int) {
	bw.WriteString(proto + " ")

	if text := http.StatusText(code); text != "" {
		bw.WriteString(strconv.Itoa(code))
		bw.WriteByte(' ')
		bw.WriteString(text)
		bw.WriteString("\r\n")
	} else {
		fmt.Fprintf(bw, "%03d status code %d\r\n", code, code)
	}
}
